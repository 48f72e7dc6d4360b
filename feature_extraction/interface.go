package feature_extraction

// Interface turns mono samples in [-1, 1] into a feature matrix. Templates
// and live queries must go through the same instance so their matrices are
// comparable.
type Interface interface {
	Extract(samples []float64) (Matrix, error)
	SampleRate() int
}
