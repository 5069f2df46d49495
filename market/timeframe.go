package market

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Timeframe is the fixed duration represented by one candle.
//
// The keys follow the usual charting notation (1m, 1h, 1d, ...).
type Timeframe string

const (
	S1  Timeframe = "1s"
	M1  Timeframe = "1m"
	M5  Timeframe = "5m"
	M15 Timeframe = "15m"
	M30 Timeframe = "30m"
	H1  Timeframe = "1h"
	H4  Timeframe = "4h"
	D1  Timeframe = "1d"
	W1  Timeframe = "1w"
	MN  Timeframe = "1month"
)

var timeframes = map[Timeframe]time.Duration{
	S1:  time.Second,
	M1:  time.Minute,
	M5:  5 * time.Minute,
	M15: 15 * time.Minute,
	M30: 30 * time.Minute,
	H1:  time.Hour,
	H4:  4 * time.Hour,
	D1:  24 * time.Hour,
	W1:  7 * 24 * time.Hour,
	MN:  30 * 24 * time.Hour,
}

// ParseTimeframe returns the normalized timeframe for a config key.
func ParseTimeframe(input string) (Timeframe, error) {
	tf := Timeframe(strings.ToLower(strings.TrimSpace(input)))
	if _, ok := timeframes[tf]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, input)
	}
	return tf, nil
}

// Duration returns the wall-clock length of one candle.
func (tf Timeframe) Duration() time.Duration {
	return timeframes[tf]
}

// Valid reports whether tf is one of the supported timeframes.
func (tf Timeframe) Valid() bool {
	_, ok := timeframes[tf]
	return ok
}

// SupportedTimeframes returns all supported keys, shortest first.
func SupportedTimeframes() []Timeframe {
	keys := make([]Timeframe, 0, len(timeframes))
	for k := range timeframes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return timeframes[keys[i]] < timeframes[keys[j]]
	})
	return keys
}
