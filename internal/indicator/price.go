package indicator

// CurrentClose is the identity indicator: close itself, no warm-up.
func CurrentClose(close []float64) []float64 {
	out := make([]float64, len(close))
	copy(out, close)
	return out
}
