// Package listener connects a frame source to the voice activity detector.
// Capture and processing run on separate goroutines joined by a bounded
// queue so slow handlers never stall the device read.
package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"speech-command-detection/observe"
	"speech-command-detection/voice_activity_detection"
)

// ErrStopListening may be returned by a Handler to end ListenLoop without
// error.
var ErrStopListening = errors.New("stop listening")

type Overflow int

const (
	// OverflowDropOldest discards the oldest queued frame when the queue is
	// full.
	OverflowDropOldest Overflow = iota

	// OverflowBlock makes capture wait for room in the queue.
	OverflowBlock
)

const defaultQueueSize = 256

type Config struct {
	Source       FrameSource
	Meter        voice_activity_detection.Meter
	Detector     voice_activity_detection.Interface
	Handler      Handler
	QueueSize    int
	Overflow     Overflow
	WarmupFrames int
	Logger       *slog.Logger
	Metrics      *observe.Metrics
}

type listenerImpl struct {
	source       FrameSource
	meter        voice_activity_detection.Meter
	detector     voice_activity_detection.Interface
	handler      Handler
	queueSize    int
	overflow     Overflow
	warmupFrames int
	logger       *slog.Logger
	metrics      *observe.Metrics
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Source == nil {
		return nil, fmt.Errorf("source is nil")
	}

	if cfg.Detector == nil {
		return nil, fmt.Errorf("detector is nil")
	}

	if cfg.Handler == nil {
		return nil, fmt.Errorf("handler is nil")
	}

	if cfg.WarmupFrames < 0 {
		return nil, fmt.Errorf("warmup frames must not be negative, got %d", cfg.WarmupFrames)
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}

	return &listenerImpl{
		source:       cfg.Source,
		meter:        cfg.Meter,
		detector:     cfg.Detector,
		handler:      cfg.Handler,
		queueSize:    queueSize,
		overflow:     cfg.Overflow,
		warmupFrames: cfg.WarmupFrames,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

func (l *listenerImpl) ListenLoop(ctx context.Context) error {
	l.detector.Reset()

	frames := make(chan []int16, l.queueSize)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(frames)
		return l.capture(gctx, frames)
	})

	g.Go(func() error {
		return l.process(gctx, frames)
	})

	err := g.Wait()

	switch {
	case ctx.Err() != nil:
		l.logger.Info("stopped listening")
		return nil
	case errors.Is(err, ErrStopListening):
		l.logger.Info("stopped listening", "reason", "handler")
		return nil
	}

	return err
}

func (l *listenerImpl) capture(ctx context.Context, frames chan []int16) error {
	warmed := 0
	if l.warmupFrames == 0 {
		l.logger.Info("started listening")
	}

	for {
		samples, err := l.source.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				l.logger.Debug("frame source exhausted")
				return nil
			}
			return fmt.Errorf("listener: read frame: %w", err)
		}

		l.metrics.FramesCaptured.Add(ctx, 1)

		if warmed < l.warmupFrames {
			warmed++
			if warmed == l.warmupFrames {
				l.logger.Info("started listening")
			}
			continue
		}

		if !l.enqueue(ctx, frames, samples) {
			return nil
		}
	}
}

// enqueue hands samples to the processor according to the overflow policy.
// It returns false when ctx ends while waiting.
func (l *listenerImpl) enqueue(ctx context.Context, frames chan []int16, samples []int16) bool {
	if l.overflow == OverflowBlock {
		select {
		case frames <- samples:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case frames <- samples:
			return true
		default:
		}

		select {
		case <-frames:
			l.metrics.FramesDropped.Add(ctx, 1)
			l.logger.Debug("processing queue full, dropped oldest frame")
		default:
		}
	}
}

func (l *listenerImpl) process(ctx context.Context, frames <-chan []int16) error {
	for {
		var samples []int16
		var ok bool

		select {
		case <-ctx.Done():
			return nil
		case samples, ok = <-frames:
			if !ok {
				return nil
			}
		}

		event := l.detector.Step(l.meter.Frame(samples))

		switch event.Kind {
		case voice_activity_detection.EventSpeechStart:
			l.logger.Debug("speech started")
		case voice_activity_detection.EventMisfire:
			l.metrics.Misfires.Add(ctx, 1)
			l.logger.Debug("misfire", "active_frames", event.ActiveFrames)
		case voice_activity_detection.EventUtterance:
			u := event.Utterance
			l.metrics.Utterances.Add(ctx, 1)
			l.logger.Info("utterance captured",
				"frames", u.Frames,
				"active_frames", u.ActiveFrames,
				"samples", len(u.Samples),
			)

			if err := l.handler(ctx, *u); err != nil {
				return err
			}
		}
	}
}
