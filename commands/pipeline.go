package commands

import (
	"context"
	"fmt"
	"log/slog"

	"speech-command-detection/audio_capture"
	"speech-command-detection/clients/action"
	"speech-command-detection/config"
	"speech-command-detection/feature_extraction"
	"speech-command-detection/listener"
	"speech-command-detection/observe"
	"speech-command-detection/playback"
	"speech-command-detection/template_store"
	"speech-command-detection/voice_activity_detection"
)

func newExtractor(c *config.Config) (feature_extraction.Interface, error) {
	return feature_extraction.New(&feature_extraction.Config{
		SampleRate:      c.Audio.SampleRate,
		NumCoefficients: c.Features.NumMFCC,
		FFTSize:         c.Features.FFTSize,
		HopLength:       c.Features.HopLength,
		NumMels:         c.Features.NumMels,
	})
}

func newStore(c *config.Config, extractor feature_extraction.Interface) (template_store.Interface, error) {
	return template_store.New(&template_store.Config{
		FileSys:   fileSys,
		Dir:       c.Templates.Dir,
		CacheFile: c.Templates.CacheFile,
		Extractor: extractor,
		Logger:    slog.Default(),
		Metrics:   observe.DefaultMetrics(),
	})
}

// newDispatcher returns nil for ActionNone.
func newDispatcher(c *config.Config) (action.Dispatcher, error) {
	switch c.Actions.Mode {
	case config.ActionExecutable, "":
		return action.NewExecutable(&action.ExecutableConfig{
			Dir:     c.Actions.Dir,
			Suffix:  c.Actions.Suffix,
			Timeout: c.Actions.Timeout,
			Logger:  slog.Default(),
		})
	case config.ActionWebhook:
		return action.NewWebhook(&action.WebhookConfig{
			URL:     c.Actions.WebhookURL,
			Timeout: c.Actions.Timeout,
		})
	case config.ActionNone:
		return nil, nil
	}

	return nil, fmt.Errorf("unknown action mode %q", c.Actions.Mode)
}

func newPlayer(c *config.Config) (playback.Interface, error) {
	return playback.New(&playback.Config{
		Backend:     string(c.Playback.Backend),
		SampleRate:  c.Audio.SampleRate,
		DeviceIndex: c.Audio.OutputDeviceIndex,
		ChunkSize:   c.Audio.ChunkSize,
		Logger:      slog.Default(),
	})
}

func overflowPolicy(p config.OverflowPolicy) listener.Overflow {
	if p == config.OverflowBlock {
		return listener.OverflowBlock
	}
	return listener.OverflowDropOldest
}

// openSource is swapped out in tests.
var openSource = func(c *config.Config) (listener.FrameSource, func() error, error) {
	source, err := audio_capture.New(&audio_capture.Config{
		SampleRate:  c.Audio.SampleRate,
		Channels:    c.Audio.Channels,
		ChunkSize:   c.Audio.ChunkSize,
		DeviceIndex: c.Audio.InputDeviceIndex,
		Logger:      slog.Default(),
	})
	if err != nil {
		return nil, nil, err
	}
	return source, source.Close, nil
}

// listen opens the input device and feeds every utterance to handler until
// ctx ends or handler returns listener.ErrStopListening.
func listen(ctx context.Context, c *config.Config, handler listener.Handler) error {
	detector, err := voice_activity_detection.New(&voice_activity_detection.Config{
		RedemptionFrames: c.VAD.RedemptionFrames,
		MinSpeechFrames:  c.VAD.MinSpeechFrames,
		PrepadFrames:     c.VAD.PrepadFrames,
	})
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSource(); err != nil {
			slog.Warn("error while freeing audio", "err", err)
		}
	}()

	l, err := listener.New(&listener.Config{
		Source:       source,
		Meter:        voice_activity_detection.Meter{Threshold: c.VAD.RMSThreshold},
		Detector:     detector,
		Handler:      handler,
		QueueSize:    c.Pipeline.QueueSize,
		Overflow:     overflowPolicy(c.Pipeline.Overflow),
		WarmupFrames: c.Audio.WarmupFrames,
		Logger:       slog.Default(),
		Metrics:      observe.DefaultMetrics(),
	})
	if err != nil {
		return err
	}

	return l.ListenLoop(ctx)
}

// captureOne returns the next utterance, or nil if ctx ended first.
func captureOne(ctx context.Context, c *config.Config) ([]int16, error) {
	var samples []int16

	err := listen(ctx, c, func(_ context.Context, u voice_activity_detection.Utterance) error {
		samples = u.Samples
		return listener.ErrStopListening
	})
	if err != nil {
		return nil, err
	}

	if samples == nil && ctx.Err() == nil {
		return nil, fmt.Errorf("input ended before an utterance was captured")
	}

	return samples, nil
}
