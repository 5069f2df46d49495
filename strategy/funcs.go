package strategy

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"github.com/mercurytrader/mercury/market"
)

// SMA returns an indicator func computing a simple moving average of the
// close column. Entries without enough history are NaN.
func SMA(period int) Func {
	return overCloses(func(closes []float64) []float64 {
		return talib.Sma(closes, period)
	}, period)
}

// EMA returns an indicator func computing an exponential moving average of
// the close column. Entries without enough history are NaN.
func EMA(period int) Func {
	return overCloses(func(closes []float64) []float64 {
		return talib.Ema(closes, period)
	}, period)
}

// RSI returns an indicator func computing the relative strength index of the
// close column.
func RSI(period int) Func {
	return overCloses(func(closes []float64) []float64 {
		return talib.Rsi(closes, period)
	}, period+1)
}

// overCloses adapts a talib vector function to the series contract: it runs
// over the visible close column and NaNs out the warmup region, where talib
// leaves zeroes.
func overCloses(fn func([]float64) []float64, warmup int) Func {
	return func(s *market.Series) []float64 {
		closes, err := s.Column(market.ColClose)
		if err != nil {
			return nil
		}
		if len(closes) < warmup {
			return nanSlice(len(closes))
		}
		out := fn(closes)
		for i := 0; i < warmup-1 && i < len(out); i++ {
			out[i] = math.NaN()
		}
		return out
	}
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
