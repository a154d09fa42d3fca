package listing

import "context"

// Store is the persistence contract for listing records. Implementations live
// under internal/store; the crawl engine performs only Exists checks and
// append-only Inserts, while the review surface uses ListAll and SetReviewed.
type Store interface {
	// Exists reports whether a record with exactly this title is persisted.
	Exists(ctx context.Context, title string) (bool, error)

	// Insert appends a new record and returns its storage id.
	Insert(ctx context.Context, rec Record) (string, error)

	// ListAll returns every stored record in insertion order.
	ListAll(ctx context.Context) ([]Stored, error)

	// SetReviewed flips the reviewed flag on an existing record.
	SetReviewed(ctx context.Context, id string, reviewed bool) error

	// Close releases the underlying storage resources.
	Close() error
}
