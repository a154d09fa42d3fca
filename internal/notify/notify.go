// Package notify delivers newly persisted listings to external sinks.
// Delivery is best-effort: a sink failure is the caller's to log, never to
// abort a crawl over.
package notify

import (
	"context"
	"errors"

	"jobtrawler/internal/listing"
)

// Notifier announces one newly persisted listing.
type Notifier interface {
	ListingFound(ctx context.Context, rec listing.Record) error
}

// Noop discards notifications.
type Noop struct{}

// ListingFound implements Notifier.
func (Noop) ListingFound(context.Context, listing.Record) error { return nil }

// Multi fans a notification out to several sinks, collecting every failure.
type Multi []Notifier

// ListingFound implements Notifier.
func (m Multi) ListingFound(ctx context.Context, rec listing.Record) error {
	var errs []error
	for _, n := range m {
		if err := n.ListingFound(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
