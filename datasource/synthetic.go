package datasource

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"github.com/mercurytrader/mercury/market"
)

// Synthetic is a deterministic candle vendor: prices are a pure function of
// (seed, instrument, bar index), so any sub-range of the grid can be served
// without shared state and two vendors with the same seed agree bar for bar.
//
// Only complete bars are published: a bar opening at T exists once T+tf has
// passed, which gives live paper sessions the same publication delay a real
// vendor has.
type Synthetic struct {
	Seed int64
	Base float64 // starting price level, defaults to 1.1000
	Amp  float64 // swing amplitude as a fraction of Base, defaults to 0.02

	now func() time.Time
}

// NewSynthetic builds a synthetic vendor with sane defaults.
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{Seed: seed, Base: 1.1000, Amp: 0.02, now: time.Now}
}

// GetTimeSeries serves the grid-aligned candles of [from, to], capped at the
// last complete bar.
func (v *Synthetic) GetTimeSeries(ctx context.Context, instrument string,
	tf market.Timeframe, from, to time.Time) (*market.Series, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	step := int64(tf.Duration() / time.Second)
	first := ceilDiv(from.Unix(), step)
	last := to.Unix() / step

	// Last complete bar: its close time must not be in the future.
	nowIdx := v.clock().Unix()/step - 1
	if last > nowIdx {
		last = nowIdx
	}

	var candles []market.Candle
	for i := first; i <= last; i++ {
		candles = append(candles, v.candle(instrument, tf, i))
	}
	return market.NewSeries(instrument, tf, market.FrameFromCandles(candles))
}

// Price returns the synthetic price level at the given bar index.
func (v *Synthetic) Price(instrument string, i int64) float64 {
	base := v.Base
	if base == 0 {
		base = 1.1000
	}
	amp := v.Amp
	if amp == 0 {
		amp = 0.02
	}

	// Two overlapping cycles plus per-bar noise: enough structure for
	// moving averages to cross without any cumulative state.
	swing := amp * (math.Sin(2*math.Pi*float64(i)/50) +
		0.5*math.Sin(2*math.Pi*float64(i)/173))
	jitter := 0.2 * amp * v.noise(instrument, i)
	return base * (1 + swing + jitter)
}

func (v *Synthetic) candle(instrument string, tf market.Timeframe, i int64) market.Candle {
	open := v.Price(instrument, i)
	close := v.Price(instrument, i+1)
	span := math.Abs(close-open) + 0.05*open*0.001
	high := math.Max(open, close) + span*0.25
	low := math.Min(open, close) - span*0.25

	step := int64(tf.Duration() / time.Second)
	return market.Candle{
		Time:   time.Unix(i*step, 0).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 100 + 50*math.Abs(v.noise(instrument, i)),
	}
}

// noise is a deterministic hash of (seed, instrument, index) in [-1, 1).
func (v *Synthetic) noise(instrument string, i int64) float64 {
	h := fnv.New64a()
	h.Write([]byte(instrument))
	var buf [16]byte
	for b := 0; b < 8; b++ {
		buf[b] = byte(uint64(v.Seed) >> (8 * b))
		buf[8+b] = byte(uint64(i) >> (8 * b))
	}
	h.Write(buf[:])
	return float64(int64(h.Sum64())) / math.MaxInt64
}

func (v *Synthetic) clock() time.Time {
	if v.now == nil {
		return time.Now()
	}
	return v.now()
}

func ceilDiv(a, b int64) int64 {
	if a >= 0 {
		return (a + b - 1) / b
	}
	return a / b
}
