package strategy

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mercurytrader/mercury/broker"
	"github.com/mercurytrader/mercury/market"
)

// Strategy is the user-defined decision logic. Setup runs once at session
// start to register indicators; Tick runs once per candle with only the
// visible window available.
type Strategy interface {
	Setup(r *Runtime) error
	Tick(ctx context.Context, r *Runtime) error
}

// Runtime binds a strategy to its gateway and candle series and owns the
// named indicator set. Indicator access goes through an explicit Get that
// recomputes lazily when the series advances.
type Runtime struct {
	gateway    *broker.Gateway
	series     *market.Series
	logic      Strategy
	indicators map[string]*Indicator
	log        *zap.Logger
}

// NewRuntime builds a runtime and runs the strategy's Setup.
func NewRuntime(gw *broker.Gateway, series *market.Series, logic Strategy,
	log *zap.Logger) (*Runtime, error) {

	if log == nil {
		log = zap.NewNop()
	}
	r := &Runtime{
		gateway:    gw,
		series:     series,
		logic:      logic,
		indicators: make(map[string]*Indicator),
		log:        log,
	}
	if err := logic.Setup(r); err != nil {
		return nil, fmt.Errorf("strategy setup: %w", err)
	}
	return r, nil
}

// Add registers an indicator under its name, replacing any previous one.
func (r *Runtime) Add(in *Indicator) {
	r.indicators[in.Name] = in
}

// Indicator returns the named indicator, recomputed against the current
// visible window if the series moved since its last computation.
func (r *Runtime) Indicator(name string) (*Indicator, error) {
	in, ok := r.indicators[name]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown indicator %q", name)
	}
	in.sync(r.series)
	return in, nil
}

// Gateway returns the broker gateway the strategy trades through.
func (r *Runtime) Gateway() *broker.Gateway { return r.gateway }

// Series returns the bound candle series.
func (r *Runtime) Series() *market.Series { return r.series }

// Current returns the last visible row.
func (r *Runtime) Current() (market.Row, error) {
	return r.series.Latest()
}

// TimeOfDay returns the clock time of the last visible candle, as an offset
// from midnight UTC. Strategies use it for session filters.
func (r *Runtime) TimeOfDay() (time.Duration, error) {
	row, err := r.series.Latest()
	if err != nil {
		return 0, err
	}
	t := row.Time.UTC()
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// Log returns the runtime logger.
func (r *Runtime) Log() *zap.Logger { return r.log }

// Tick runs one round of the strategy's decision logic.
func (r *Runtime) Tick(ctx context.Context) error {
	return r.logic.Tick(ctx, r)
}
