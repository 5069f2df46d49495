package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"

	"github.com/mercurytrader/mercury/market"
)

// Recorder persists submitted orders and closed positions. The sqlite
// journal implements it; NopRecorder is used when journaling is off.
type Recorder interface {
	RecordOrder(Order) error
	RecordPosition(Position) error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordOrder(Order) error       { return nil }
func (NopRecorder) RecordPosition(Position) error { return nil }

// PollPolicy bounds the last-candle poll. Venues publish a fresh bar some
// time after the boundary, so the poll backs off exponentially (with jitter)
// between attempts and gives up after MaxAttempts rather than spinning
// forever.
type PollPolicy struct {
	Min         time.Duration
	Max         time.Duration
	MaxAttempts int
}

// DefaultPollPolicy caps the backoff at 30s and the poll at 10 attempts.
var DefaultPollPolicy = PollPolicy{
	Min:         500 * time.Millisecond,
	Max:         30 * time.Second,
	MaxAttempts: 10,
}

// Gateway normalizes a venue behind the account/order/position model and
// owns the session-level liveness concerns: the one-retry reconnect policy
// (via the adapter's Session) and the bounded last-candle poll.
//
// A gateway is owned by a single engine loop; its positions cache is not
// safe for concurrent use.
type Gateway struct {
	venue     Venue
	account   Account
	accountID string
	positions []Position
	poll      PollPolicy
	rec       Recorder
	log       *zap.Logger
	now       func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger injects the gateway logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// WithRecorder journals submitted orders and closed positions.
func WithRecorder(rec Recorder) Option {
	return func(g *Gateway) { g.rec = rec }
}

// WithAccountID selects the venue account to load at dial time.
func WithAccountID(id string) Option {
	return func(g *Gateway) { g.accountID = id }
}

// WithPollPolicy overrides the last-candle poll bounds.
func WithPollPolicy(p PollPolicy) Option {
	return func(g *Gateway) { g.poll = p }
}

// Dial connects and authenticates the venue, loads the account, and returns
// a ready gateway.
func Dial(ctx context.Context, v Venue, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		venue: v,
		poll:  DefaultPollPolicy,
		rec:   NopRecorder{},
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	if err := v.Connect(ctx); err != nil {
		return nil, fmt.Errorf("dial %s: %w", v.Name(), err)
	}

	account, err := v.GetAccount(ctx, g.accountID)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", v.Name(), err)
	}
	g.account = account

	g.log.Info("gateway ready",
		zap.String("venue", v.Name()),
		zap.String("account", account.ID),
		zap.String("currency", string(account.Currency)))
	return g, nil
}

// Venue returns the underlying adapter.
func (g *Gateway) Venue() Venue { return g.venue }

// Account returns the account snapshot loaded at dial time.
func (g *Gateway) Account() Account { return g.account }

// RefreshAccount re-fetches the account from the venue and replaces the
// snapshot.
func (g *Gateway) RefreshAccount(ctx context.Context) (Account, error) {
	account, err := g.venue.GetAccount(ctx, g.accountID)
	if err != nil {
		return Account{}, fmt.Errorf("refresh account: %w", err)
	}
	g.account = account
	return account, nil
}

// Candles fetches a historical window from the venue.
func (g *Gateway) Candles(ctx context.Context, instrument string,
	tf market.Timeframe, from, to time.Time) (*market.Series, error) {

	return g.venue.GetCandles(ctx, instrument, tf, from, to)
}

// MarketPrice returns the current price on the requested side of the book.
func (g *Gateway) MarketPrice(ctx context.Context, instrument string, side PriceType) (float64, error) {
	return g.venue.MarketPrice(ctx, instrument, side)
}

// LastCandle polls the venue for the most recent candle of the timeframe,
// absorbing the venue's publication delay. It retries on an exponential,
// jittered backoff and fails with ErrNoCandle once the attempt budget is
// spent.
func (g *Gateway) LastCandle(ctx context.Context, instrument string,
	tf market.Timeframe) (*market.Series, error) {

	wait := &backoff.Backoff{
		Min:    g.poll.Min,
		Max:    g.poll.Max,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 0; attempt < g.poll.MaxAttempts; attempt++ {
		now := g.now()
		candles, err := g.venue.GetCandles(ctx, instrument, tf,
			now.Add(-tf.Duration()), now)
		if err != nil {
			return nil, fmt.Errorf("last candle %s/%s: %w", instrument, tf, err)
		}
		if candles.Len() > 0 {
			return candles, nil
		}

		d := wait.Duration()
		g.log.Debug("no candle yet, backing off",
			zap.String("instrument", instrument),
			zap.Duration("wait", d),
			zap.Int("attempt", attempt+1))
		if err := sleep(ctx, d); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %s/%s after %d attempts",
		ErrNoCandle, instrument, tf, g.poll.MaxAttempts)
}

// SubmitOrder submits an order, journals it, and refreshes the positions
// cache from the venue so local state only reflects confirmed reads.
func (g *Gateway) SubmitOrder(ctx context.Context, req OrderRequest) (Order, error) {
	order, err := g.venue.SubmitOrder(ctx, req)
	if err != nil {
		return Order{}, fmt.Errorf("submit %s %s: %w", req.Action, req.Instrument, err)
	}

	g.log.Info("order submitted",
		zap.String("id", order.ID),
		zap.String("action", string(order.Action)),
		zap.String("instrument", order.Instrument),
		zap.Float64("volume", order.Volume),
		zap.Float64("price", order.Price))

	if err := g.rec.RecordOrder(order); err != nil {
		g.log.Warn("journal order failed", zap.Error(err))
	}
	if err := g.refreshPositions(ctx); err != nil {
		return order, err
	}
	return order, nil
}

// ClosePosition closes an open position at the given level, journals the
// close, and refreshes the positions cache.
func (g *Gateway) ClosePosition(ctx context.Context, pos Position, level float64) error {
	if err := g.venue.ClosePosition(ctx, pos, level); err != nil {
		return fmt.Errorf("close position %s: %w", pos.ID, err)
	}

	g.log.Info("position closed",
		zap.String("id", pos.ID),
		zap.String("instrument", pos.Instrument),
		zap.Float64("level", level))

	closed := pos
	closed.Status = Closed
	closed.ClosePrice = level
	closed.CloseTime = g.now()
	if err := g.rec.RecordPosition(closed); err != nil {
		g.log.Warn("journal position failed", zap.Error(err))
	}

	return g.refreshPositions(ctx)
}

// Positions returns the cached open positions; with refresh it re-fetches
// from the venue first and replaces the cache wholesale.
func (g *Gateway) Positions(ctx context.Context, refresh bool) ([]Position, error) {
	if refresh {
		if err := g.refreshPositions(ctx); err != nil {
			return nil, err
		}
	}
	return g.positions, nil
}

// LongPositions returns the cached long positions.
func (g *Gateway) LongPositions(ctx context.Context, refresh bool) ([]Position, error) {
	return g.filtered(ctx, refresh, Long)
}

// ShortPositions returns the cached short positions.
func (g *Gateway) ShortPositions(ctx context.Context, refresh bool) ([]Position, error) {
	return g.filtered(ctx, refresh, Short)
}

// IsLong reports whether any cached position is long.
func (g *Gateway) IsLong() bool { return g.anyOf(Long) }

// IsShort reports whether any cached position is short.
func (g *Gateway) IsShort() bool { return g.anyOf(Short) }

func (g *Gateway) anyOf(typ PositionType) bool {
	for _, p := range g.positions {
		if p.Type == typ {
			return true
		}
	}
	return false
}

func (g *Gateway) filtered(ctx context.Context, refresh bool, typ PositionType) ([]Position, error) {
	positions, err := g.Positions(ctx, refresh)
	if err != nil {
		return nil, err
	}
	var out []Position
	for _, p := range positions {
		if p.Type == typ {
			out = append(out, p)
		}
	}
	return out, nil
}

func (g *Gateway) refreshPositions(ctx context.Context) error {
	positions, err := g.venue.GetPositions(ctx, Opened)
	if err != nil {
		return fmt.Errorf("refresh positions: %w", err)
	}
	g.positions = positions
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
