package crawl

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"jobtrawler/internal/listing"
)

// Oracle answers "has this title been persisted?" against the record store,
// with a positive cache for titles seen during the current run. The cache
// only ever adds entries, so a title persisted earlier in the run can never
// be reported as new again (no stale negatives). Negative answers always go
// to storage.
type Oracle struct {
	store listing.Store
	seen  mapset.Set[string]
}

// NewOracle wraps a store in a run-scoped oracle.
func NewOracle(store listing.Store) *Oracle {
	return &Oracle{
		store: store,
		seen:  mapset.NewThreadUnsafeSet[string](),
	}
}

// Exists reports whether a record with this exact title is already persisted.
func (o *Oracle) Exists(ctx context.Context, title string) (bool, error) {
	if o.seen.Contains(title) {
		return true, nil
	}
	exists, err := o.store.Exists(ctx, title)
	if err != nil {
		return false, fmt.Errorf("query store for %q: %w", title, err)
	}
	if exists {
		o.seen.Add(title)
	}
	return exists, nil
}

// Remember marks a title as persisted for the remainder of the run. Called
// immediately after every successful insert.
func (o *Oracle) Remember(title string) {
	o.seen.Add(title)
}
