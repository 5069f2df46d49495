package market

import "time"

// Candle represents one OHLCV (Open, High, Low, Close, Volume) bar for a
// fixed time interval. Time is the bar's opening timestamp.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
