package strategy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mercurytrader/mercury/broker"
)

// SMACross is a basic SMA crossover demo strategy: go long when the fast
// average crosses over the slow one, flat when it crosses under. One
// position at a time. Not something to trade a real account with.
type SMACross struct {
	Fast int
	Slow int
	Size float64
}

// NewSMACross builds the demo strategy with the classic 10/30 averages.
func NewSMACross(size float64) *SMACross {
	return &SMACross{Fast: 10, Slow: 30, Size: size}
}

func (s *SMACross) fastName() string { return fmt.Sprintf("sma%d", s.Fast) }
func (s *SMACross) slowName() string { return fmt.Sprintf("sma%d", s.Slow) }

// Setup registers the two moving averages.
func (s *SMACross) Setup(r *Runtime) error {
	if s.Fast <= 0 || s.Slow <= 0 || s.Fast >= s.Slow {
		return fmt.Errorf("sma cross: need 0 < fast < slow, got %d/%d", s.Fast, s.Slow)
	}
	r.Add(NewIndicator(s.fastName(), SMA(s.Fast)))
	r.Add(NewIndicator(s.slowName(), SMA(s.Slow)))
	return nil
}

// Tick runs the crossover decision for the current window.
func (s *SMACross) Tick(ctx context.Context, r *Runtime) error {
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
