package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mercurytrader/mercury/broker"
	"github.com/mercurytrader/mercury/market"
	"github.com/mercurytrader/mercury/strategy"
)

// Result summarizes one simulation run.
type Result struct {
	Instrument string
	Timeframe  market.Timeframe
	Start      time.Time
	End        time.Time
	Ticks      int
	Trades     int
	Wins       int
	Losses     int
	GrossPnL   decimal.Decimal
	Balance    decimal.Decimal
}

func (r Result) String() string {
	return fmt.Sprintf("%s %s: %d ticks, %d trades (%d won, %d lost), pnl %s, balance %s",
		r.Instrument, r.Timeframe, r.Ticks, r.Trades, r.Wins, r.Losses,
		r.GrossPnL, r.Balance)
}

// Simulator replays a historical window through a strategy at full speed.
// The same runtime and gateway path as the live loop, minus the clock: each
// iteration advances the window cursor by one candle and ticks.
type Simulator struct {
	gateway  *broker.Gateway
	logic    strategy.Strategy
	log      *zap.Logger
	progress func(done, total int)
}

// SimOption configures a Simulator.
type SimOption func(*Simulator)

// WithSimLogger injects the simulator logger.
func WithSimLogger(log *zap.Logger) SimOption {
	return func(s *Simulator) { s.log = log }
}

// WithProgress registers a per-tick progress callback.
func WithProgress(fn func(done, total int)) SimOption {
	return func(s *Simulator) { s.progress = fn }
}

// NewSimulator builds a simulator for the given gateway and strategy logic.
func NewSimulator(gw *broker.Gateway, logic strategy.Strategy, opts ...SimOption) *Simulator {
	s := &Simulator{
		gateway:  gw,
		logic:    logic,
		log:      zap.NewNop(),
		progress: func(int, int) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches the window, holds back warmup candles for indicator history,
// and replays the rest one candle at a time. The strategy only ever sees
// data at or before the cursor; by the end the whole window is visible.
func (s *Simulator) Run(ctx context.Context, instrument string,
	tf market.Timeframe, from, to time.Time, warmup int) (Result, error) {

	if warmup < 1 {
		return Result{}, fmt.Errorf("simulator: warmup must be positive, got %d", warmup)
	}

	candles, err := s.gateway.Candles(ctx, instrument, tf, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("history fetch: %w", err)
	}
	size := candles.Size()
	if size <= warmup {
		return Result{}, fmt.Errorf("simulator: %d candles is not enough for warmup %d",
			size, warmup)
	}

	if err := candles.Advance(warmup); err != nil {
		return Result{}, err
	}
	rt, err := strategy.NewRuntime(s.gateway, candles, s.logic, s.log)
	if err != nil {
		return Result{}, err
	}

	s.log.Info("simulation started",
		zap.String("instrument", instrument),
		zap.String("timeframe", string(tf)),
		zap.Int("candles", size),
		zap.Int("warmup", warmup))

	result := Result{Instrument: instrument, Timeframe: tf}
	total := size - warmup
	for i := warmup; i < size; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := candles.Advance(i + 1); err != nil {
			return result, err
		}
		row, err := candles.Latest()
		if err != nil {
			return result, err
		}
		if result.Ticks == 0 {
			result.Start = row.Time
		}
		result.End = row.Time

		if err := rt.Tick(ctx); err != nil {
			return result, fmt.Errorf("tick at %s: %w", row.Time, err)
		}
		result.Ticks++
		s.progress(result.Ticks, total)
	}

	return s.summarize(ctx, result)
}

func (s *Simulator) summarize(ctx context.Context, result Result) (Result, error) {
	closed, err := s.gateway.Venue().GetPositions(ctx, broker.Closed)
	if err != nil {
		return result, fmt.Errorf("summary: %w", err)
	}
	for _, p := range closed {
		result.Trades++
		result.GrossPnL = result.GrossPnL.Add(p.Profit)
		if p.Profit.IsPositive() {
			result.Wins++
		} else {
			result.Losses++
		}
	}

	account, err := s.gateway.RefreshAccount(ctx)
	if err != nil {
		return result, err
	}
	result.Balance = account.Balance

	s.log.Info("simulation finished",
		zap.Int("ticks", result.Ticks),
		zap.Int("trades", result.Trades),
		zap.String("balance", result.Balance.String()))
	return result, nil
}
