// Package observe provides the metrics and logging primitives shared by the
// capture pipeline, the template store and the CLI.
//
// Metrics are recorded through the OpenTelemetry Metrics API. [InitProvider]
// installs a Prometheus exporter so the instruments can be scraped from
// /metrics. A package-level [DefaultMetrics] instance bound to the global
// meter provider is available for convenience; tests should build their own
// with [NewMetrics] and an SDK meter provider.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for every instrument below.
const meterName = "speech-command-detection"

// Metrics holds the OpenTelemetry instruments for the application. All
// fields are safe for concurrent use.
type Metrics struct {
	// FramesCaptured counts frames read from the frame source.
	FramesCaptured metric.Int64Counter

	// FramesDropped counts frames discarded because the processing queue was
	// full.
	FramesDropped metric.Int64Counter

	// Utterances counts finalized utterances handed to a handler.
	Utterances metric.Int64Counter

	// Misfires counts utterances discarded for having too few active frames.
	Misfires metric.Int64Counter

	// Decisions counts classifier outcomes. Use with attribute:
	//   attribute.String("label", ...) where unsure decisions use "unsure"
	//   and attribute.Bool("confident", ...)
	Decisions metric.Int64Counter

	// ActionFailures counts dispatches that returned an error.
	ActionFailures metric.Int64Counter

	// TemplateRebuilds counts full library rebuilds. Use with attribute:
	//   attribute.String("reason", "missing"|"corrupt"|"stale"|"forced")
	TemplateRebuilds metric.Int64Counter

	// ExtractDuration tracks feature extraction latency for live utterances.
	ExtractDuration metric.Float64Histogram

	// ClassifyDuration tracks template matching latency.
	ClassifyDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FramesCaptured, err = m.Int64Counter("speech.frames.captured",
		metric.WithDescription("Frames read from the capture device."),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64Counter("speech.frames.dropped",
		metric.WithDescription("Frames dropped because the processing queue was full."),
	); err != nil {
		return nil, err
	}
	if met.Utterances, err = m.Int64Counter("speech.utterances",
		metric.WithDescription("Finalized utterances."),
	); err != nil {
		return nil, err
	}
	if met.Misfires, err = m.Int64Counter("speech.misfires",
		metric.WithDescription("Utterances discarded as too short."),
	); err != nil {
		return nil, err
	}
	if met.Decisions, err = m.Int64Counter("speech.decisions",
		metric.WithDescription("Classifier decisions by label."),
	); err != nil {
		return nil, err
	}
	if met.ActionFailures, err = m.Int64Counter("speech.action.failures",
		metric.WithDescription("Action dispatches that failed."),
	); err != nil {
		return nil, err
	}
	if met.TemplateRebuilds, err = m.Int64Counter("speech.templates.rebuilds",
		metric.WithDescription("Full template library rebuilds by reason."),
	); err != nil {
		return nil, err
	}
	if met.ExtractDuration, err = m.Float64Histogram("speech.extract.duration",
		metric.WithDescription("Latency of feature extraction for an utterance."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClassifyDuration, err = m.Float64Histogram("speech.classify.duration",
		metric.WithDescription("Latency of template matching for an utterance."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] bound to
// [otel.GetMeterProvider]. Panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}
