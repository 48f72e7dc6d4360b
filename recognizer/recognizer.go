// Package recognizer turns finalized utterances into actions: features are
// extracted, matched against the template library and, when the nearest
// neighbours agree, the winning label is dispatched.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"speech-command-detection/classifier"
	"speech-command-detection/clients/action"
	"speech-command-detection/feature_extraction"
	"speech-command-detection/observe"
	"speech-command-detection/template_store"
	"speech-command-detection/voice_activity_detection"
)

// UnsureLabel is the label recorded for decisions without a winner.
const UnsureLabel = "unsure"

type Config struct {
	Extractor  feature_extraction.Interface
	Classifier classifier.Interface
	Library    *template_store.Library

	// Dispatcher may be nil, in which case decisions are only logged.
	Dispatcher action.Dispatcher

	// SampleRate of the incoming utterances. Zero means the extractor's rate.
	SampleRate int

	Logger  *slog.Logger
	Metrics *observe.Metrics
}

type recognizerImpl struct {
	extractor  feature_extraction.Interface
	classifier classifier.Interface
	library    *template_store.Library
	dispatcher action.Dispatcher
	sampleRate int
	logger     *slog.Logger
	metrics    *observe.Metrics
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Extractor == nil {
		return nil, fmt.Errorf("extractor is nil")
	}

	if cfg.Classifier == nil {
		return nil, fmt.Errorf("classifier is nil")
	}

	if cfg.Library == nil {
		return nil, fmt.Errorf("library is nil")
	}

	if cfg.SampleRate < 0 {
		return nil, fmt.Errorf("sample rate must not be negative, got %d", cfg.SampleRate)
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = cfg.Extractor.SampleRate()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}

	return &recognizerImpl{
		extractor:  cfg.Extractor,
		classifier: cfg.Classifier,
		library:    cfg.Library,
		dispatcher: cfg.Dispatcher,
		sampleRate: sampleRate,
		logger:     logger,
		metrics:    metrics,
	}, nil
}

func (r *recognizerImpl) Recognize(ctx context.Context, samples []int16) (classifier.Result, error) {
	signal := feature_extraction.NormalizeInt16(samples)

	if r.sampleRate != r.extractor.SampleRate() {
		var err error
		signal, err = feature_extraction.Resample(signal, r.sampleRate, r.extractor.SampleRate())
		if err != nil {
			return classifier.Result{}, fmt.Errorf("recognizer: resample: %w", err)
		}
	}

	start := time.Now()
	features, err := r.extractor.Extract(signal)
	if err != nil {
		return classifier.Result{}, fmt.Errorf("recognizer: extract: %w", err)
	}
	r.metrics.ExtractDuration.Record(ctx, time.Since(start).Seconds())

	start = time.Now()
	result, err := r.classifier.Classify(features, r.library)
	if err != nil {
		return classifier.Result{}, fmt.Errorf("recognizer: classify: %w", err)
	}
	r.metrics.ClassifyDuration.Record(ctx, time.Since(start).Seconds())

	return result, nil
}

func (r *recognizerImpl) Handle(ctx context.Context, utterance voice_activity_detection.Utterance) error {
	result, err := r.Recognize(ctx, utterance.Samples)
	if err != nil {
		if errors.Is(err, classifier.ErrNoTemplates) {
			return err
		}
		r.logger.Warn("could not recognize utterance", "err", err, "samples", len(utterance.Samples))
		return nil
	}

	for i, m := range result.Ranking {
		r.logger.Debug("match", "rank", i+1, "label", m.Label, "source", m.Source, "distance", m.Distance)
	}

	label := result.Label
	if result.Unsure {
		label = UnsureLabel
	}
	r.metrics.Decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("label", label),
		attribute.Bool("confident", !result.Unsure),
	))

	if result.Unsure {
		r.logger.Info("unsure", "candidates", neighbourLabels(result.Ranking))
		return nil
	}

	r.logger.Info("recognized", "label", result.Label, "distance", result.Distance())

	if r.dispatcher == nil {
		return nil
	}

	act := action.Action{Label: result.Label, Distance: result.Distance()}
	if err := r.dispatcher.Dispatch(ctx, act); err != nil {
		r.metrics.ActionFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("label", result.Label)))
		r.logger.Error("action failed", "label", result.Label, "err", err)
	}

	return nil
}

func neighbourLabels(ranking []classifier.Match) []string {
	n := min(len(ranking), classifier.Neighbours)
	labels := make([]string, n)
	for i := range n {
		labels[i] = ranking[i].Label
	}
	return labels
}
