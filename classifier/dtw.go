package classifier

import (
	"fmt"
	"math"

	"speech-command-detection/feature_extraction"
)

// Distance returns the asymmetric DTW distance between query and template,
// normalized by the number of query frames. Every query frame is matched to
// exactly one template frame; from one query frame to the next the template
// index advances by 0, 1 or 2. The path must start at the first pair and end
// at the last one, so templates more than twice as long as the query cannot be
// aligned and measure +Inf.
func Distance(query, template feature_extraction.Matrix) (float64, error) {
	if query.Frames() == 0 || template.Frames() == 0 {
		return 0, fmt.Errorf("classifier: empty feature matrix")
	}

	if query.Coefficients() != template.Coefficients() {
		return 0, fmt.Errorf("classifier: coefficient count mismatch: query %d, template %d",
			query.Coefficients(), template.Coefficients())
	}

	return alignFrames(query.Transpose(), template.Transpose()), nil
}

// alignFrames runs the recurrence on [time][coefficient] inputs.
func alignFrames(q, r [][]float64) float64 {
	n, m := len(q), len(r)
	inf := math.Inf(1)

	prev := make([]float64, m)
	curr := make([]float64, m)

	for j := range prev {
		prev[j] = inf
	}
	prev[0] = euclidean(q[0], r[0])

	for i := 1; i < n; i++ {
		for j := 0; j < m; j++ {
			best := prev[j]
			if j >= 1 && prev[j-1] < best {
				best = prev[j-1]
			}
			if j >= 2 && prev[j-2] < best {
				best = prev[j-2]
			}

			if math.IsInf(best, 1) {
				curr[j] = inf
				continue
			}

			curr[j] = best + euclidean(q[i], r[j])
		}

		prev, curr = curr, prev
	}

	return prev[m-1] / float64(n)
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return math.Sqrt(sum)
}
