package classifier

import (
	"errors"
	"fmt"
	"testing"

	"speech-command-detection/feature_extraction"
	"speech-command-detection/template_store"
)

type ref struct {
	label string
	value float64
}

// library builds single-frame templates so the distance to a single-frame
// query is just the absolute difference of the values.
func library(refs ...ref) *template_store.Library {
	lib := &template_store.Library{Templates: map[string][]template_store.Template{}}

	for i, r := range refs {
		source := fmt.Sprintf("%s_%d.wav", r.label, i)
		lib.Templates[r.label] = append(lib.Templates[r.label], template_store.Template{
			Label:    r.label,
			Source:   source,
			Features: feature_extraction.Matrix{{r.value}},
		})
		lib.FileNames = append(lib.FileNames, source)
	}

	return lib
}

func TestClassify_TwoOneSplitPicksNearest(t *testing.T) {
	lib := library(
		ref{"lights_on", 1.0},
		ref{"lights_on", 1.2},
		ref{"lights_on", 9.0},
		ref{"lights_off", 1.1},
		ref{"lights_off", 8.0},
		ref{"lights_off", 8.5},
	)

	res, err := New().Classify(feature_extraction.Matrix{{1.0}}, lib)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if res.Unsure {
		t.Fatal("expected a confident decision")
	}
	if res.Label != "lights_on" {
		t.Errorf("expected lights_on, got %s", res.Label)
	}
	if len(res.Ranking) != 6 {
		t.Errorf("expected every template ranked, got %d", len(res.Ranking))
	}
	for i := 1; i < len(res.Ranking); i++ {
		if res.Ranking[i-1].Distance > res.Ranking[i].Distance {
			t.Fatalf("ranking not ascending at %d: %+v", i, res.Ranking)
		}
	}
	if res.Distance() != 0 {
		t.Errorf("expected winning distance 0, got %f", res.Distance())
	}
}

func TestClassify_ThreeDistinctLabelsIsUnsure(t *testing.T) {
	lib := library(
		ref{"lights_on", 1.0},
		ref{"lights_off", 1.1},
		ref{"fan_on", 1.2},
		ref{"lights_on", 7.0},
		ref{"lights_off", 7.5},
	)

	res, err := New().Classify(feature_extraction.Matrix{{1.0}}, lib)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if !res.Unsure {
		t.Errorf("expected unsure, got %q", res.Label)
	}
	if res.Label != "" {
		t.Errorf("unsure result must not carry a label, got %q", res.Label)
	}
}

func TestClassify_MinorityNearestStillWins(t *testing.T) {
	// Nearest is fan, the next two are lights: two distinct labels, so the
	// single nearest template decides.
	lib := library(
		ref{"fan", 2.0},
		ref{"lights", 2.5},
		ref{"lights", 2.6},
	)

	res, err := New().Classify(feature_extraction.Matrix{{2.0}}, lib)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Unsure || res.Label != "fan" {
		t.Errorf("expected fan, got %+v", res)
	}
}

func TestClassify_FewerTemplatesThanNeighbours(t *testing.T) {
	lib := library(ref{"a", 0}, ref{"b", 5})

	res, err := New().Classify(feature_extraction.Matrix{{4}}, lib)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Unsure || res.Label != "b" {
		t.Errorf("expected b, got %+v", res)
	}
}

func TestClassify_EmptyLibrary(t *testing.T) {
	_, err := New().Classify(feature_extraction.Matrix{{1}}, &template_store.Library{})
	if !errors.Is(err, ErrNoTemplates) {
		t.Errorf("expected ErrNoTemplates, got %v", err)
	}
}

func TestClassify_PropagatesShapeErrors(t *testing.T) {
	lib := library(ref{"a", 0})

	if _, err := New().Classify(feature_extraction.Matrix{{1}, {2}}, lib); err == nil {
		t.Error("expected coefficient mismatch error")
	}
}
