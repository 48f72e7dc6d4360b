package feature_extraction

// Matrix holds features indexed [coefficient][time].
type Matrix [][]float64

func (m Matrix) Coefficients() int {
	return len(m)
}

func (m Matrix) Frames() int {
	if len(m) == 0 {
		return 0
	}

	return len(m[0])
}

// Frame returns a copy of the coefficient vector at time t.
func (m Matrix) Frame(t int) []float64 {
	v := make([]float64, len(m))
	for c := range m {
		v[c] = m[c][t]
	}

	return v
}

// Transpose returns the features indexed [time][coefficient].
func (m Matrix) Transpose() [][]float64 {
	frames := m.Frames()
	out := make([][]float64, frames)

	for t := 0; t < frames; t++ {
		out[t] = m.Frame(t)
	}

	return out
}
