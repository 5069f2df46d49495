package strategy

// Crossover reports whether a just crossed over b: a was at or below b one
// step back and is above it now. With fewer than two points on either side
// it degrades to false rather than failing.
func Crossover(a, b []float64) bool {
	if len(a) < 2 || len(b) < 2 {
		return false
	}
	return a[len(a)-2] <= b[len(b)-2] && a[len(a)-1] > b[len(b)-1]
}

// Crossunder reports whether a just crossed under b.
func Crossunder(a, b []float64) bool {
	return Crossover(b, a)
}

// Cross reports whether a and b just crossed in either direction.
func Cross(a, b []float64) bool {
	return Crossover(a, b) || Crossunder(a, b)
}
