// Package archive persists rendered detail-view snapshots so a reviewed
// listing can be inspected later even after the posting disappears.
package archive

import "context"

// Store writes one snapshot blob and returns a URI for it.
type Store interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
}

// Noop discards snapshots. Used when archival is disabled.
type Noop struct{}

// Put implements Store.
func (Noop) Put(_ context.Context, key string, _ string, _ []byte) (string, error) {
	return "noop://" + key, nil
}
