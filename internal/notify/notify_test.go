package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"jobtrawler/internal/listing"
)

type recordingSink struct {
	got []listing.Record
	err error
}

func (r *recordingSink) ListingFound(_ context.Context, rec listing.Record) error {
	r.got = append(r.got, rec)
	return r.err
}

func TestMulti_ListingFound_FansOut(t *testing.T) {
	t.Parallel()

	a := &recordingSink{}
	b := &recordingSink{}
	m := Multi{a, b}

	rec := listing.Record{Title: "Go Developer"}
	require.NoError(t, m.ListingFound(context.Background(), rec))
	require.Equal(t, []listing.Record{rec}, a.got)
	require.Equal(t, []listing.Record{rec}, b.got)
}

func TestMulti_ListingFound_CollectsFailuresButDeliversToAll(t *testing.T) {
	t.Parallel()

	failing := &recordingSink{err: errors.New("sink down")}
	healthy := &recordingSink{}
	m := Multi{failing, healthy}

	err := m.ListingFound(context.Background(), listing.Record{Title: "Job"})
	require.ErrorContains(t, err, "sink down")
	require.Len(t, healthy.got, 1)
}

func TestNoop_ListingFound(t *testing.T) {
	t.Parallel()

	require.NoError(t, Noop{}.ListingFound(context.Background(), listing.Record{}))
}
