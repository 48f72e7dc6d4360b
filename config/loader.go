package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("config file not found, using defaults", "path", path)
			cfg := Default()
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r on top of [Default] and validates the
// result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// Audio
	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", cfg.Audio.SampleRate))
	}
	if cfg.Audio.Channels < 1 {
		errs = append(errs, fmt.Errorf("audio.channels must be at least 1, got %d", cfg.Audio.Channels))
	}
	if cfg.Audio.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("audio.chunk_size must be positive, got %d", cfg.Audio.ChunkSize))
	}
	if cfg.Audio.InputDeviceIndex < DefaultDevice {
		errs = append(errs, fmt.Errorf("audio.input_device_index must be -1 (default) or a device index, got %d", cfg.Audio.InputDeviceIndex))
	}
	if cfg.Audio.OutputDeviceIndex < DefaultDevice {
		errs = append(errs, fmt.Errorf("audio.output_device_index must be -1 (default) or a device index, got %d", cfg.Audio.OutputDeviceIndex))
	}
	if cfg.Audio.WarmupFrames < 0 {
		errs = append(errs, fmt.Errorf("audio.warmup_frames must not be negative, got %d", cfg.Audio.WarmupFrames))
	}

	// VAD
	if cfg.VAD.RMSThreshold < 0 || cfg.VAD.RMSThreshold >= 1 {
		errs = append(errs, fmt.Errorf("vad.rms_threshold %.4f is out of range [0, 1)", cfg.VAD.RMSThreshold))
	}
	if cfg.VAD.RedemptionFrames < 0 {
		errs = append(errs, fmt.Errorf("vad.redemption_frames must not be negative, got %d", cfg.VAD.RedemptionFrames))
	}
	if cfg.VAD.MinSpeechFrames < 0 {
		errs = append(errs, fmt.Errorf("vad.min_speech_frames must not be negative, got %d", cfg.VAD.MinSpeechFrames))
	}
	if cfg.VAD.PrepadFrames < 0 {
		errs = append(errs, fmt.Errorf("vad.prepad_frames must not be negative, got %d", cfg.VAD.PrepadFrames))
	}

	// Features
	if cfg.Features.NumMFCC <= 0 {
		errs = append(errs, fmt.Errorf("features.n_mfcc must be positive, got %d", cfg.Features.NumMFCC))
	}
	if cfg.Features.NumMels > 0 && cfg.Features.NumMFCC > cfg.Features.NumMels {
		errs = append(errs, fmt.Errorf("features.n_mfcc %d exceeds features.n_mels %d", cfg.Features.NumMFCC, cfg.Features.NumMels))
	}
	if cfg.Features.FFTSize < 0 || cfg.Features.HopLength < 0 || cfg.Features.NumMels < 0 {
		errs = append(errs, errors.New("features.n_fft, features.hop_length and features.n_mels must not be negative"))
	}

	// Actions
	if cfg.Actions.Mode != "" && !cfg.Actions.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("actions.mode %q is invalid; valid values: executable, webhook, none", cfg.Actions.Mode))
	}
	if cfg.Actions.Mode == ActionWebhook && cfg.Actions.WebhookURL == "" {
		errs = append(errs, errors.New("actions.webhook_url is required when actions.mode is webhook"))
	}
	if cfg.Actions.Timeout < 0 {
		errs = append(errs, fmt.Errorf("actions.timeout must not be negative, got %s", cfg.Actions.Timeout))
	}

	// Pipeline
	if cfg.Pipeline.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.queue_size must be positive, got %d", cfg.Pipeline.QueueSize))
	}
	if cfg.Pipeline.Overflow != "" && !cfg.Pipeline.Overflow.IsValid() {
		errs = append(errs, fmt.Errorf("pipeline.overflow %q is invalid; valid values: drop_oldest, block", cfg.Pipeline.Overflow))
	}

	if cfg.Playback.Backend != "" && !cfg.Playback.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("playback.backend %q is invalid; valid values: oto, portaudio", cfg.Playback.Backend))
	}

	if cfg.Playback.Backend == PlaybackOto && cfg.Audio.OutputDeviceIndex != DefaultDevice {
		slog.Warn("playback.backend oto always uses the system default output; audio.output_device_index is ignored",
			"output_device_index", cfg.Audio.OutputDeviceIndex,
		)
	}

	if cfg.Audio.Channels > 1 {
		slog.Info("multi-channel capture will be downmixed to mono", "channels", cfg.Audio.Channels)
	}

	return errors.Join(errs...)
}

// Save writes cfg to path as YAML, replacing any existing file.
func Save(path string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode yaml: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %q: %w", path, err)
	}
	return nil
}
