// Package engine drives strategy evaluation: the live fixed-cadence tick
// loop and its bounded backtest counterpart. One engine owns one series and
// one gateway for the whole session; nothing here is safe for concurrent
// use, by design.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mercurytrader/mercury/broker"
	"github.com/mercurytrader/mercury/market"
	"github.com/mercurytrader/mercury/strategy"
)

// DefaultOffset pads the tick boundary to absorb the venue's candle
// publication delay.
const DefaultOffset = 60 * time.Second

// Engine runs the live trading loop: tick the strategy, sleep to the next
// timeframe boundary, poll the fresh candle in, advance the window, repeat.
type Engine struct {
	gateway  *broker.Gateway
	logic    strategy.Strategy
	clock    Clock
	offset   time.Duration
	maxPolls int
	log      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, for tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithOffset overrides the publication-delay padding added to each tick
// boundary.
func WithOffset(d time.Duration) Option {
	return func(e *Engine) { e.offset = d }
}

// WithLogger injects the engine logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMaxPolls bounds how often one iteration re-polls a duplicate candle
// before giving up.
func WithMaxPolls(n int) Option {
	return func(e *Engine) { e.maxPolls = n }
}

// New builds an engine for the given gateway and strategy logic.
func New(gw *broker.Gateway, logic strategy.Strategy, opts ...Option) *Engine {
	e := &Engine{
		gateway:  gw,
		logic:    logic,
		clock:    realClock{},
		offset:   DefaultOffset,
		maxPolls: 10,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start fetches the warmup window, binds the strategy runtime, and runs the
// loop until the context is cancelled or a fatal error surfaces. In live
// mode there is no other exit.
func (e *Engine) Start(ctx context.Context, instrument string,
	tf market.Timeframe, warmup int) error {

	if !tf.Valid() {
		return fmt.Errorf("%w: %q", market.ErrUnknownTimeframe, tf)
	}
	if warmup < 1 {
		return fmt.Errorf("engine: warmup must be positive, got %d", warmup)
	}

	now := e.clock.Now()
	from := now.Add(-time.Duration(warmup) * tf.Duration())
	candles, err := e.gateway.Candles(ctx, instrument, tf, from, now)
	if err != nil {
		return fmt.Errorf("warmup fetch: %w", err)
	}
	if candles.Len() == 0 {
		return fmt.Errorf("warmup fetch: %w for %s/%s", broker.ErrNoCandle, instrument, tf)
	}

	rt, err := strategy.NewRuntime(e.gateway, candles, e.logic, e.log)
	if err != nil {
		return err
	}

	e.log.Info("engine started",
		zap.String("instrument", instrument),
		zap.String("timeframe", string(tf)),
		zap.Int("warmup", warmup),
		zap.Int("candles", candles.Len()))

	return e.run(ctx, rt, candles, instrument, tf)
}

func (e *Engine) run(ctx context.Context, rt *strategy.Runtime,
	candles *market.Series, instrument string, tf market.Timeframe) error {

	for {
		// Cooperative cancellation point: sessions stop between
		// iterations, never mid-request.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		row, err := candles.Latest()
		if err != nil {
			return err
		}

		e.log.Debug("tick", zap.Time("candle", row.Time))
		if err := rt.Tick(ctx); err != nil {
			return fmt.Errorf("tick at %s: %w", row.Time, err)
		}

		next := row.Time.Add(tf.Duration() + e.offset)
		wait := next.Sub(e.clock.Now()).Round(time.Second)
		if wait < 0 {
			wait = 0
		}
		e.log.Debug("sleeping to next boundary",
			zap.Time("next", next), zap.Duration("wait", wait))
		if err := e.clock.Sleep(ctx, wait); err != nil {
			return err
		}

		if err := e.nextCandle(ctx, candles, instrument, tf); err != nil {
			return err
		}
	}
}

// nextCandle polls the gateway until a candle newer than the visible latest
// arrives, then appends it and advances the cursor by one. Duplicates are
// never appended; a poll that keeps serving the stale bar eventually fails
// rather than looping forever.
func (e *Engine) nextCandle(ctx context.Context, candles *market.Series,
	instrument string, tf market.Timeframe) error {

	latest, err := candles.Latest()
	if err != nil {
		return err
	}

	for attempt := 0; attempt < e.maxPolls; attempt++ {
		batch, err := e.gateway.LastCandle(ctx, instrument, tf)
		if err != nil {
			return err
		}
		row, err := batch.Latest()
		if err != nil {
			return err
		}

		if !row.Time.Equal(latest.Time) {
			if err := candles.Append(frameFromRow(row)); err != nil {
				return err
			}
			return candles.Advance(candles.Len() + 1)
		}

		e.log.Debug("candle unchanged, repolling", zap.Time("candle", row.Time))
		if err := e.clock.Sleep(ctx, time.Second); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: %s/%s still at %s after %d polls",
		broker.ErrNoCandle, instrument, tf, latest.Time, e.maxPolls)
}

func frameFromRow(row market.Row) market.Frame {
	f := market.Frame{
		Times:   []time.Time{row.Time},
		Columns: make(map[string][]float64, len(row.Values)),
	}
	for name, v := range row.Values {
		f.Columns[name] = []float64{v}
	}
	return f
}
