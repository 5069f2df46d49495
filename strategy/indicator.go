package strategy

import (
	"math"

	"github.com/mercurytrader/mercury/market"
)

// Func computes an indicator vector over the visible window of a series.
// Implementations must be pure: same window in, same vector out.
type Func func(s *market.Series) []float64

// Display carries charting hints for an indicator. It has no effect on
// behavior.
type Display struct {
	Plot    bool
	Overlay bool
	Color   string
	Scatter bool
}

// Indicator is a named, cacheable computation over a series. The runtime
// recomputes it lazily whenever the bound series' version moves, so a value
// read during a tick always reflects only the visible window.
type Indicator struct {
	Name    string
	Display Display

	fn    Func
	data  []float64
	at    uint64
	fresh bool
}

// NewIndicator builds an indicator with default display hints.
func NewIndicator(name string, fn Func) *Indicator {
	return &Indicator{
		Name:    name,
		Display: Display{Plot: true},
		fn:      fn,
	}
}

// Apply recomputes the indicator over the series' current visible window.
func (in *Indicator) Apply(s *market.Series) {
	in.data = in.fn(s)
	in.at = s.Version()
	in.fresh = true
}

// sync recomputes only if the series moved since the last computation.
func (in *Indicator) sync(s *market.Series) {
	if !in.fresh || in.at != s.Version() {
		in.Apply(s)
	}
}

// Values returns the computed vector. Callers must not mutate it.
func (in *Indicator) Values() []float64 { return in.data }

// Last returns the most recent value, or NaN when nothing is computed yet.
func (in *Indicator) Last() float64 {
	return in.Previous(0)
}

// Previous returns the value shift positions back from the last one. Out of
// range yields NaN, never a panic.
func (in *Indicator) Previous(shift int) float64 {
	idx := len(in.data) - 1 - shift
	if idx < 0 || idx >= len(in.data) {
		return math.NaN()
	}
	return in.data[idx]
}

// Crossover reports whether in just crossed over other, looking at the two
// most recent points only.
func (in *Indicator) Crossover(other *Indicator) bool {
	return Crossover(in.data, other.data)
}

// Crossunder reports whether in just crossed under other.
func (in *Indicator) Crossunder(other *Indicator) bool {
	return Crossunder(in.data, other.data)
}
