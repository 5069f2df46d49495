package strategy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mercurytrader/mercury/broker"
)

// EMACross trades the same crossover as SMACross but on exponential
// averages, which react faster to recent price.
type EMACross struct {
	Fast int
	Slow int
	Size float64
}

// NewEMACross builds the strategy with the common 20/50 averages.
func NewEMACross(size float64) *EMACross {
	return &EMACross{Fast: 20, Slow: 50, Size: size}
}

func (s *EMACross) fastName() string { return fmt.Sprintf("ema%d", s.Fast) }
func (s *EMACross) slowName() string { return fmt.Sprintf("ema%d", s.Slow) }

// Setup registers the two exponential averages.
func (s *EMACross) Setup(r *Runtime) error {
	if s.Fast <= 0 || s.Slow <= 0 || s.Fast >= s.Slow {
		return fmt.Errorf("ema cross: need 0 < fast < slow, got %d/%d", s.Fast, s.Slow)
	}
	r.Add(NewIndicator(s.fastName(), EMA(s.Fast)))
	r.Add(NewIndicator(s.slowName(), EMA(s.Slow)))
	return nil
}

// Tick runs the crossover decision for the current window.
func (s *EMACross) Tick(ctx context.Context, r *Runtime) error {
	fast, err := r.Indicator(s.fastName())
	if err != nil {
		return err
	}
	slow, err := r.Indicator(s.slowName())
	if err != nil {
		return err
	}

	gw := r.Gateway()
	positions, err := gw.Positions(ctx, false)
	if err != nil {
		return err
	}

	if len(positions) > 0 {
		if !fast.Crossunder(slow) {
			return nil
		}
		pos := positions[0]
		level, err := gw.MarketPrice(ctx, pos.Instrument, broker.Bid)
		if err != nil {
			return err
		}
		r.Log().Info("closing position on crossunder",
			zap.String("position", pos.ID), zap.Float64("level", level))
		return gw.ClosePosition(ctx, pos, level)
	}

	if !fast.Crossover(slow) {
		return nil
	}

	instrument := r.Series().Instrument()
	price, err := gw.MarketPrice(ctx, instrument, broker.Ask)
	if err != nil {
		return err
	}
	r.Log().Info("opening long on crossover",
		zap.String("instrument", instrument), zap.Float64("price", price))
	_, err = gw.SubmitOrder(ctx, broker.OrderRequest{
		Action:     broker.Buy,
		Size:       s.Size,
		Price:      price,
		Instrument: instrument,
		Currency:   gw.Account().Currency,
	})
	return err
}
