// Package memory provides an in-memory listing store for tests and
// development runs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobtrawler/internal/listing"
)

// Store keeps listings in memory, insertion-ordered.
type Store struct {
	mu      sync.RWMutex
	order   []string
	records map[string]listing.Stored
}

// New constructs an empty Store.
func New() *Store {
	return &Store{records: make(map[string]listing.Stored)}
}

// Exists implements listing.Store.
func (s *Store) Exists(_ context.Context, title string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.Record.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// Insert implements listing.Store.
func (s *Store) Insert(_ context.Context, rec listing.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.records[id] = listing.Stored{
		ID:      id,
		Record:  rec,
		AddedAt: time.Now().UTC(),
	}
	s.order = append(s.order, id)
	return id, nil
}

// ListAll implements listing.Store.
func (s *Store) ListAll(_ context.Context) ([]listing.Stored, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]listing.Stored, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

// SetReviewed implements listing.Store.
func (s *Store) SetReviewed(_ context.Context, id string, reviewed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %q not found", id)
	}
	rec.Reviewed = reviewed
	s.records[id] = rec
	return nil
}

// Close implements listing.Store.
func (s *Store) Close() error { return nil }
