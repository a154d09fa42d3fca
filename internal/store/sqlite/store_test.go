package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jobtrawler/internal/listing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestStore_InsertAndExists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	exists, err := s.Exists(ctx, "Go Developer")
	require.NoError(t, err)
	require.False(t, exists)

	id, err := s.Insert(ctx, listing.Record{
		Title:       "Go Developer",
		Location:    "Paris",
		Salary:      "50k",
		Benefits:    "Mutuelle",
		Description: "Ship services.",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	exists, err = s.Exists(ctx, "Go Developer")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestStore_ListAllRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Insert(ctx, listing.Record{Title: "First", Location: "Lille"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, listing.Record{
		Title:       "Second",
		Location:    "Lyon",
		Salary:      "",
		Description: listing.FallbackMissing,
	})
	require.NoError(t, err)

	stored, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, "First", stored[0].Record.Title)
	require.Equal(t, "Second", stored[1].Record.Title)

	// Field absence round-trips untouched: empty salary stays empty and the
	// placeholder stays a placeholder.
	require.Equal(t, "", stored[1].Record.Salary)
	require.Equal(t, listing.FallbackMissing, stored[1].Record.Description)
	require.False(t, stored[0].Reviewed)
	require.False(t, stored[0].AddedAt.IsZero())
}

func TestStore_SetReviewed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Insert(ctx, listing.Record{Title: "Reviewable"})
	require.NoError(t, err)

	require.NoError(t, s.SetReviewed(ctx, id, true))
	stored, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.True(t, stored[0].Reviewed)
}

func TestStore_SetReviewedUnknownID(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	require.Error(t, s.SetReviewed(context.Background(), "12345", true))
	require.Error(t, s.SetReviewed(context.Background(), "not-a-number", true))
}

func TestStore_MigrationIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jobs.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), listing.Record{Title: "Survivor"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening applies the migration again without clobbering data.
	s, err = Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	exists, err := s.Exists(context.Background(), "Survivor")
	require.NoError(t, err)
	require.True(t, exists)
}
