package broker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercurytrader/mercury/market"
)

// stubVenue serves canned candle batches and positions.
type stubVenue struct {
	candleBatches []*market.Series // one batch per GetCandles call, last repeats
	candleCalls   int
	positions     []Position
	submitted     []OrderRequest
	closed        []string
}

func (v *stubVenue) Name() string                          { return "stub" }
func (v *stubVenue) Connect(ctx context.Context) error     { return nil }
func (v *stubVenue) RenderOrder(raw Raw) (Order, error)    { return Order{}, nil }
func (v *stubVenue) RenderPosition(raw Raw) (Position, error) {
	return Position{}, nil
}

func (v *stubVenue) Fees(ctx context.Context, pos Position) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (v *stubVenue) GetAccount(ctx context.Context, accountID string) (Account, error) {
	return NewAccount("ACC-1", USD, decimal.NewFromInt(10000), AccountCash, decimal.Zero, nil), nil
}

func (v *stubVenue) GetCandles(ctx context.Context, instrument string,
	tf market.Timeframe, from, to time.Time) (*market.Series, error) {

	i := v.candleCalls
	if i >= len(v.candleBatches) {
		i = len(v.candleBatches) - 1
	}
	v.candleCalls++
	return v.candleBatches[i], nil
}

func (v *stubVenue) MarketPrice(ctx context.Context, instrument string, side PriceType) (float64, error) {
	return 1.1000, nil
}

func (v *stubVenue) SubmitOrder(ctx context.Context, req OrderRequest) (Order, error) {
	v.submitted = append(v.submitted, req)
	v.positions = append(v.positions, Position{
		ID:         "P-1",
		Type:       Long,
		Volume:     req.Size,
		Status:     Opened,
		Instrument: req.Instrument,
	})
	return Order{ID: "O-1", Action: req.Action, Volume: req.Size,
		Instrument: req.Instrument, Status: OrderFilled}, nil
}

func (v *stubVenue) GetPositions(ctx context.Context, status PositionStatus) ([]Position, error) {
	return append([]Position(nil), v.positions...), nil
}

func (v *stubVenue) ClosePosition(ctx context.Context, pos Position, level float64) error {
	v.closed = append(v.closed, pos.ID)
	kept := v.positions[:0]
	for _, p := range v.positions {
		if p.ID != pos.ID {
			kept = append(kept, p)
		}
	}
	v.positions = kept
	return nil
}

func emptySeries(t *testing.T) *market.Series {
	t.Helper()
	s, err := market.NewSeries("EUR_USD", market.H1, market.FrameFromCandles(nil))
	require.NoError(t, err)
	return s
}

func oneCandleSeries(t *testing.T, at time.Time) *market.Series {
	t.Helper()
	s, err := market.NewSeries("EUR_USD", market.H1, market.FrameFromCandles([]market.Candle{
		{Time: at, Open: 1.1, High: 1.2, Low: 1.0, Close: 1.15, Volume: 10},
	}))
	require.NoError(t, err)
	return s
}

func fastPoll() PollPolicy {
	return PollPolicy{Min: time.Millisecond, Max: 5 * time.Millisecond, MaxAttempts: 5}
}

func TestGatewayLastCandleRetriesUntilAvailable(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	venue := &stubVenue{candleBatches: []*market.Series{
		emptySeries(t), emptySeries(t), oneCandleSeries(t, at),
	}}

	gw, err := Dial(context.Background(), venue, WithPollPolicy(fastPoll()))
	require.NoError(t, err)

	candles, err := gw.LastCandle(context.Background(), "EUR_USD", market.H1)
	require.NoError(t, err)
	require.Equal(t, 1, candles.Len())
	assert.Equal(t, 3, venue.candleCalls)

	row, err := candles.Latest()
	require.NoError(t, err)
	assert.Equal(t, at, row.Time)
}

func TestGatewayLastCandleExhaustsAttempts(t *testing.T) {
	t.Parallel()

	venue := &stubVenue{candleBatches: []*market.Series{emptySeries(t)}}

	gw, err := Dial(context.Background(), venue, WithPollPolicy(fastPoll()))
	require.NoError(t, err)

	_, err = gw.LastCandle(context.Background(), "EUR_USD", market.H1)
	assert.ErrorIs(t, err, ErrNoCandle)
	assert.Equal(t, 5, venue.candleCalls)
}

func TestGatewaySubmitOrderRefreshesPositions(t *testing.T) {
	t.Parallel()

	venue := &stubVenue{candleBatches: []*market.Series{emptySeries(t)}}
	gw, err := Dial(context.Background(), venue)
	require.NoError(t, err)

	assert.False(t, gw.IsLong())

	order, err := gw.SubmitOrder(context.Background(), OrderRequest{
		Action: Buy, Size: 1000, Instrument: "EUR_USD",
	})
	require.NoError(t, err)
	assert.Equal(t, OrderFilled, order.Status)

	// Mutating calls refresh the cache from the venue.
	assert.True(t, gw.IsLong())
	assert.False(t, gw.IsShort())

	longs, err := gw.LongPositions(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, longs, 1)

	require.NoError(t, gw.ClosePosition(context.Background(), longs[0], 1.12))
	assert.False(t, gw.IsLong())
	assert.Equal(t, []string{"P-1"}, venue.closed)
}

func TestGatewayPositionsRefreshReplacesCache(t *testing.T) {
	t.Parallel()

	venue := &stubVenue{candleBatches: []*market.Series{emptySeries(t)}}
	gw, err := Dial(context.Background(), venue)
	require.NoError(t, err)

	// Venue-side change invisible until a refresh is requested.
	venue.positions = []Position{{ID: "P-9", Type: Short, Status: Opened}}
	cached, err := gw.Positions(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, cached)

	fresh, err := gw.Positions(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "P-9", fresh[0].ID)
	assert.True(t, gw.IsShort())
}

func TestGatewayAccountLoadedAtDial(t *testing.T) {
	t.Parallel()

	venue := &stubVenue{candleBatches: []*market.Series{emptySeries(t)}}
	gw, err := Dial(context.Background(), venue)
	require.NoError(t, err)

	acct := gw.Account()
	assert.Equal(t, "ACC-1", acct.ID)
	assert.Equal(t, USD, acct.Currency)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(10000)))
	assert.True(t, acct.Capital.Equal(acct.Balance))
	assert.NotNil(t, acct.Raw)
}
