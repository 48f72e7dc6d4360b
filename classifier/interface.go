package classifier

import (
	"errors"

	"speech-command-detection/feature_extraction"
	"speech-command-detection/template_store"
)

var ErrNoTemplates = errors.New("classifier: library has no templates")

// Neighbours is how many nearest templates vote on the decision.
const Neighbours = 3

// MaxDistinctLabels is the largest number of distinct labels among the
// nearest neighbours that still yields a confident decision.
const MaxDistinctLabels = 2

// Match is one template's distance to the query.
type Match struct {
	Label    string
	Source   string
	Distance float64
}

// Result is the ranked matches plus the decision drawn from them.
type Result struct {
	Ranking []Match
	Label   string
	Unsure  bool
}

// Distance of the winning match, or +Inf when unsure.
func (r Result) Distance() float64 {
	if r.Unsure || len(r.Ranking) == 0 {
		return inf
	}

	return r.Ranking[0].Distance
}

type Interface interface {
	Classify(query feature_extraction.Matrix, library *template_store.Library) (Result, error)
}
