package classifier

import (
	"math"
	"sort"

	"speech-command-detection/feature_extraction"
	"speech-command-detection/template_store"
)

var inf = math.Inf(1)

type classifierImpl struct{}

func New() Interface {
	return &classifierImpl{}
}

// Classify ranks every template by distance and decides. The result is unsure
// when the nearest Neighbours templates carry more than MaxDistinctLabels
// labels; otherwise it is the label of the single nearest template.
func (c *classifierImpl) Classify(query feature_extraction.Matrix, library *template_store.Library) (Result, error) {
	templates := library.All()
	if len(templates) == 0 {
		return Result{}, ErrNoTemplates
	}

	ranking := make([]Match, 0, len(templates))

	for _, tpl := range templates {
		d, err := Distance(query, tpl.Features)
		if err != nil {
			return Result{}, err
		}

		ranking = append(ranking, Match{
			Label:    tpl.Label,
			Source:   tpl.Source,
			Distance: d,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Distance < ranking[j].Distance
	})

	return decide(ranking), nil
}

func decide(ranking []Match) Result {
	res := Result{Ranking: ranking}

	top := ranking[:min(Neighbours, len(ranking))]

	labels := make(map[string]struct{}, len(top))
	for _, m := range top {
		labels[m.Label] = struct{}{}
	}

	if len(labels) > MaxDistinctLabels {
		res.Unsure = true
		return res
	}

	res.Label = top[0].Label

	return res
}
