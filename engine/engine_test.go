package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercurytrader/mercury/broker"
	"github.com/mercurytrader/mercury/market"
	"github.com/mercurytrader/mercury/strategy"
)

// scriptVenue serves one candle batch per GetCandles call; the last batch
// repeats once the script runs out.
type scriptVenue struct {
	batches []*market.Series
	calls   int
}

func (v *scriptVenue) Name() string                      { return "script" }
func (v *scriptVenue) Connect(ctx context.Context) error { return nil }

func (v *scriptVenue) GetAccount(ctx context.Context, accountID string) (broker.Account, error) {
	return broker.NewAccount("ACC-1", broker.USD, decimal.NewFromInt(10000),
		broker.AccountCash, decimal.Zero, nil), nil
}

func (v *scriptVenue) GetCandles(ctx context.Context, instrument string,
	tf market.Timeframe, from, to time.Time) (*market.Series, error) {

	i := v.calls
	if i >= len(v.batches) {
		i = len(v.batches) - 1
	}
	v.calls++
	return v.batches[i], nil
}

func (v *scriptVenue) MarketPrice(ctx context.Context, instrument string, side broker.PriceType) (float64, error) {
	return 1.1, nil
}

func (v *scriptVenue) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	return broker.Order{}, nil
}

func (v *scriptVenue) GetPositions(ctx context.Context, status broker.PositionStatus) ([]broker.Position, error) {
	return nil, nil
}

func (v *scriptVenue) ClosePosition(ctx context.Context, pos broker.Position, level float64) error {
	return nil
}

func (v *scriptVenue) Fees(ctx context.Context, pos broker.Position) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (v *scriptVenue) RenderOrder(raw broker.Raw) (broker.Order, error) {
	return broker.Order{}, nil
}

func (v *scriptVenue) RenderPosition(raw broker.Raw) (broker.Position, error) {
	return broker.Position{}, nil
}

// fakeClock never actually waits.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	return nil
}

// recorder counts ticks, records the visible window on each, and cancels the
// session after a fixed number of them.
type recorder struct {
	cancel    context.CancelFunc
	stopAfter int
	ticks     int
	seenLens  []int
	seenTimes []time.Time
}

func (r *recorder) Setup(rt *strategy.Runtime) error { return nil }

func (r *recorder) Tick(ctx context.Context, rt *strategy.Runtime) error {
	r.ticks++
	r.seenLens = append(r.seenLens, rt.Series().Len())
	row, err := rt.Current()
	if err != nil {
		return err
	}
	r.seenTimes = append(r.seenTimes, row.Time)
	if r.ticks >= r.stopAfter {
		r.cancel()
	}
	return nil
}

func hourly(t *testing.T, start time.Time, n int) *market.Series {
	t.Helper()
	candles := make([]market.Candle, n)
	for i := range candles {
		price := 1.1 + float64(i)*0.001
		candles[i] = market.Candle{
			Time: start.Add(time.Duration(i) * time.Hour),
			Open: price, High: price + 0.001, Low: price - 0.001,
			Close: price, Volume: 100,
		}
	}
	s, err := market.NewSeries("EUR_USD", market.H1, market.FrameFromCandles(candles))
	require.NoError(t, err)
	return s
}

func TestEngineSkipsDuplicateCandles(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	warmup := hourly(t, start, 3) // 10:00 11:00 12:00
	dup12 := hourly(t, start.Add(2*time.Hour), 1)
	fresh13 := hourly(t, start.Add(3*time.Hour), 1)
	fresh14 := hourly(t, start.Add(4*time.Hour), 1)

	venue := &scriptVenue{batches: []*market.Series{
		warmup,
		dup12, dup12, fresh13, // two stale polls before 13:00 shows up
		fresh14,
	}}
	gw, err := broker.Dial(context.Background(), venue)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logic := &recorder{cancel: cancel, stopAfter: 3}
	clock := &fakeClock{now: start.Add(2*time.Hour + 30*time.Minute)}

	e := New(gw, logic, WithClock(clock))
	err = e.Start(ctx, "EUR_USD", market.H1, 2)
	assert.ErrorIs(t, err, context.Canceled)

	// Three ticks, the window growing by exactly one candle each round.
	assert.Equal(t, []int{3, 4, 5}, logic.seenLens)
	assert.Equal(t, []time.Time{
		start.Add(2 * time.Hour),
		start.Add(3 * time.Hour),
		start.Add(4 * time.Hour),
	}, logic.seenTimes)
}

func TestEngineGivesUpOnStalePoll(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	warmup := hourly(t, start, 3)
	dup := hourly(t, start.Add(2*time.Hour), 1)

	venue := &scriptVenue{batches: []*market.Series{warmup, dup}}
	gw, err := broker.Dial(context.Background(), venue)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logic := &recorder{cancel: cancel, stopAfter: 100}
	clock := &fakeClock{now: start.Add(2*time.Hour + 30*time.Minute)}

	e := New(gw, logic, WithClock(clock), WithMaxPolls(3))
	err = e.Start(ctx, "EUR_USD", market.H1, 2)
	assert.ErrorIs(t, err, broker.ErrNoCandle)
	assert.Equal(t, 1, logic.ticks)
}

func TestEngineStartValidation(t *testing.T) {
	t.Parallel()

	venue := &scriptVenue{batches: []*market.Series{
		hourly(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 1),
	}}
	gw, err := broker.Dial(context.Background(), venue)
	require.NoError(t, err)

	e := New(gw, &recorder{cancel: func() {}, stopAfter: 1})

	err = e.Start(context.Background(), "EUR_USD", "3weeks", 10)
	assert.ErrorIs(t, err, market.ErrUnknownTimeframe)

	err = e.Start(context.Background(), "EUR_USD", market.H1, 0)
	assert.ErrorContains(t, err, "warmup")
}

func TestEngineEmptyWarmupFetchFails(t *testing.T) {
	t.Parallel()

	empty, err := market.NewSeries("EUR_USD", market.H1, market.FrameFromCandles(nil))
	require.NoError(t, err)
	venue := &scriptVenue{batches: []*market.Series{empty}}
	gw, err := broker.Dial(context.Background(), venue)
	require.NoError(t, err)

	e := New(gw, &recorder{cancel: func() {}, stopAfter: 1})
	err = e.Start(context.Background(), "EUR_USD", market.H1, 5)
	assert.ErrorIs(t, err, broker.ErrNoCandle)
}
