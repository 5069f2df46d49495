package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercurytrader/mercury/broker"
	"github.com/mercurytrader/mercury/broker/sim"
	"github.com/mercurytrader/mercury/datasource"
	"github.com/mercurytrader/mercury/market"
	"github.com/mercurytrader/mercury/strategy"
)

func TestSimulatorReplaysBoundedWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	venue := &scriptVenue{batches: []*market.Series{hourly(t, start, 40)}}
	gw, err := broker.Dial(context.Background(), venue)
	require.NoError(t, err)

	logic := &recorder{cancel: func() {}, stopAfter: 1000}
	var progress []int
	s := NewSimulator(gw, logic, WithProgress(func(done, total int) {
		progress = append(progress, done)
		assert.Equal(t, 10, total)
	}))

	result, err := s.Run(context.Background(), "EUR_USD", market.H1,
		start, start.Add(40*time.Hour), 30)
	require.NoError(t, err)

	// 40 candles with 30 held back for warmup leaves exactly 10 ticks.
	assert.Equal(t, 10, result.Ticks)
	assert.Equal(t, 10, logic.ticks)
	assert.Equal(t, start.Add(30*time.Hour), result.Start)
	assert.Equal(t, start.Add(39*time.Hour), result.End)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, progress)

	// Each tick saw exactly one more candle than the last, and the full
	// window is visible once the run completes.
	assert.Equal(t, []int{31, 32, 33, 34, 35, 36, 37, 38, 39, 40}, logic.seenLens)
	series := venue.batches[0]
	assert.Equal(t, series.Size(), series.Len())
}

func TestSimulatorRejectsShortWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	venue := &scriptVenue{batches: []*market.Series{hourly(t, start, 20)}}
	gw, err := broker.Dial(context.Background(), venue)
	require.NoError(t, err)

	s := NewSimulator(gw, &recorder{cancel: func() {}, stopAfter: 1000})
	_, err = s.Run(context.Background(), "EUR_USD", market.H1,
		start, start.Add(20*time.Hour), 30)
	assert.ErrorContains(t, err, "not enough")

	_, err = s.Run(context.Background(), "EUR_USD", market.H1,
		start, start.Add(20*time.Hour), 0)
	assert.ErrorContains(t, err, "warmup")
}

// roundTrip opens one long on its first tick and closes it on the second.
type roundTrip struct {
	ticks int
}

func (s *roundTrip) Setup(rt *strategy.Runtime) error { return nil }

func (s *roundTrip) Tick(ctx context.Context, rt *strategy.Runtime) error {
	s.ticks++
	gw := rt.Gateway()
	switch s.ticks {
	case 1:
		_, err := gw.SubmitOrder(ctx, broker.OrderRequest{
			Action: broker.Buy, Size: 1000, Instrument: "EUR_USD",
		})
		return err
	case 2:
		longs, err := gw.LongPositions(ctx, false)
		if err != nil {
			return err
		}
		bid, err := gw.MarketPrice(ctx, "EUR_USD", broker.Bid)
		if err != nil {
			return err
		}
		return gw.ClosePosition(ctx, longs[0], bid)
	}
	return nil
}

func TestSimulatorSummarizesTrades(t *testing.T) {
	t.Parallel()

	venue := sim.New(sim.Config{
		Balance: decimal.NewFromInt(10_000),
		Vendor:  datasource.NewSynthetic(7),
	})
	gw, err := broker.Dial(context.Background(), venue)
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewSimulator(gw, &roundTrip{})
	result, err := s.Run(context.Background(), "EUR_USD", market.H1,
		start, start.Add(9*time.Hour), 5)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Trades)
	assert.Equal(t, 1, result.Wins+result.Losses)
	assert.False(t, result.Balance.IsZero())
	expected := decimal.NewFromInt(10_000).Add(result.GrossPnL).
		Sub(result.Balance)
	// Balance moves by pnl minus the spread cost of the round trip.
	assert.True(t, expected.Abs().LessThan(decimal.NewFromInt(1)),
		"balance %s, pnl %s", result.Balance, result.GrossPnL)
}
