package crawl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"jobtrawler/internal/listing"
	"jobtrawler/internal/store/memory"
)

// countingStore counts Exists lookups hitting the underlying store.
type countingStore struct {
	listing.Store
	existsCalls int
}

func (c *countingStore) Exists(ctx context.Context, title string) (bool, error) {
	c.existsCalls++
	return c.Store.Exists(ctx, title)
}

func TestOracle_Exists_CachesPositives(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingStore{Store: memory.New()}
	_, err := backing.Insert(ctx, listing.Record{Title: "Seen Before"})
	require.NoError(t, err)

	o := NewOracle(backing)

	for i := 0; i < 3; i++ {
		exists, err := o.Exists(ctx, "Seen Before")
		require.NoError(t, err)
		require.True(t, exists)
	}
	require.Equal(t, 1, backing.existsCalls)
}

func TestOracle_Exists_NeverCachesNegatives(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingStore{Store: memory.New()}
	o := NewOracle(backing)

	exists, err := o.Exists(ctx, "Late Arrival")
	require.NoError(t, err)
	require.False(t, exists)

	// Another writer lands the title between lookups; the oracle must see it.
	_, err = backing.Insert(ctx, listing.Record{Title: "Late Arrival"})
	require.NoError(t, err)

	exists, err = o.Exists(ctx, "Late Arrival")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestOracle_Remember_SkipsStoreLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingStore{Store: memory.New()}
	o := NewOracle(backing)

	o.Remember("Just Inserted")

	exists, err := o.Exists(ctx, "Just Inserted")
	require.NoError(t, err)
	require.True(t, exists)
	require.Zero(t, backing.existsCalls)
}
