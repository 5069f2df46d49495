package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercurytrader/mercury/market"
)

func frameOf(start time.Time, closes ...float64) market.Frame {
	f := market.Frame{Columns: map[string][]float64{market.ColClose: closes}}
	for i := range closes {
		f.Times = append(f.Times, start.Add(time.Duration(i)*time.Hour))
	}
	return f
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var _ Store = store

	require.NoError(t, store.Store(ctx, "EUR_USD/1h", frameOf(start, 1.1, 1.2)))
	require.NoError(t, store.Append(ctx, "EUR_USD/1h", frameOf(start.Add(2*time.Hour), 1.3)))

	got, err := store.Get(ctx, "EUR_USD/1h")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.1, 1.2, 1.3}, got.Columns[market.ColClose])
	assert.Len(t, got.Times, 3)

	// Get hands back a copy, not the stored slices.
	got.Columns[market.ColClose][0] = 9.9
	again, err := store.Get(ctx, "EUR_USD/1h")
	require.NoError(t, err)
	assert.Equal(t, 1.1, again.Columns[market.ColClose][0])
}

func TestMemoryStoreAppendMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Store(ctx, "s", frameOf(start, 1)))
	bad := market.Frame{
		Times:   []time.Time{start.Add(time.Hour)},
		Columns: map[string][]float64{"vwap": {1}},
	}
	assert.ErrorIs(t, store.Append(ctx, "s", bad), market.ErrShapeMismatch)

	// Append to a fresh name just stores.
	require.NoError(t, store.Append(ctx, "fresh", frameOf(start, 2)))
	_, err := store.Get(ctx, "missing")
	assert.Error(t, err)
}
