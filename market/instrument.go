package market

import "math"

// Instrument carries per-pair trading metadata.
type Instrument struct {
	Name             string
	BaseCurrency     string
	QuoteCurrency    string
	PipLocation      int
	MinimumTradeSize float64
	MarginRate       float64
}

// Pip returns the pip size in price units, e.g. 0.0001 for EUR_USD.
func (i Instrument) Pip() float64 {
	return math.Pow10(i.PipLocation)
}

// Instruments is the set of tradable pairs.
var Instruments = map[string]Instrument{
	"EUR_USD": {
		Name:             "EUR_USD",
		BaseCurrency:     "EUR",
		QuoteCurrency:    "USD",
		PipLocation:      -4,
		MinimumTradeSize: 1,
		MarginRate:       0.02,
	},
	"GBP_USD": {
		Name:             "GBP_USD",
		BaseCurrency:     "GBP",
		QuoteCurrency:    "USD",
		PipLocation:      -4,
		MinimumTradeSize: 1,
		MarginRate:       0.02,
	},
	"AUD_USD": {
		Name:             "AUD_USD",
		BaseCurrency:     "AUD",
		QuoteCurrency:    "USD",
		PipLocation:      -4,
		MinimumTradeSize: 1,
		MarginRate:       0.02,
	},
	"USD_JPY": {
		Name:             "USD_JPY",
		BaseCurrency:     "USD",
		QuoteCurrency:    "JPY",
		PipLocation:      -2,
		MinimumTradeSize: 1,
		MarginRate:       0.02,
	},
}

// KnownInstrument reports whether the pair is in the instrument table.
func KnownInstrument(name string) bool {
	_, ok := Instruments[name]
	return ok
}
