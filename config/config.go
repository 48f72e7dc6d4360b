// Package config provides the YAML configuration schema and loader.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// ActionMode selects how a confident label is acted upon.
type ActionMode string

const (
	// ActionExecutable runs <dir>/<label><suffix>.
	ActionExecutable ActionMode = "executable"

	// ActionWebhook posts the label to a URL.
	ActionWebhook ActionMode = "webhook"

	// ActionNone only logs the decision.
	ActionNone ActionMode = "none"
)

func (m ActionMode) IsValid() bool {
	switch m {
	case ActionExecutable, ActionWebhook, ActionNone:
		return true
	}
	return false
}

// OverflowPolicy decides what the capture side does when the processing
// queue is full.
type OverflowPolicy string

const (
	// OverflowDropOldest discards the oldest queued frame to make room.
	OverflowDropOldest OverflowPolicy = "drop_oldest"

	// OverflowBlock makes capture wait for the processor.
	OverflowBlock OverflowPolicy = "block"
)

func (p OverflowPolicy) IsValid() bool {
	return p == OverflowDropOldest || p == OverflowBlock
}

// PlaybackBackend selects the output library used to replay recordings.
type PlaybackBackend string

const (
	PlaybackOto       PlaybackBackend = "oto"
	PlaybackPortAudio PlaybackBackend = "portaudio"
)

func (b PlaybackBackend) IsValid() bool {
	return b == PlaybackOto || b == PlaybackPortAudio
}

// DefaultDevice selects the system default input or output device.
const DefaultDevice = -1

// Config is the root configuration structure.
type Config struct {
	LogLevel  LogLevel        `yaml:"log_level"`
	Audio     AudioConfig     `yaml:"audio"`
	VAD       VADConfig       `yaml:"vad"`
	Features  FeaturesConfig  `yaml:"features"`
	Templates TemplatesConfig `yaml:"templates"`
	Actions   ActionsConfig   `yaml:"actions"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AudioConfig describes the capture format. Frames are ChunkSize samples of
// 16-bit PCM per channel.
type AudioConfig struct {
	SampleRate        int `yaml:"sample_rate"`
	Channels          int `yaml:"channels"`
	ChunkSize         int `yaml:"chunk_size"`
	InputDeviceIndex  int `yaml:"input_device_index"`
	OutputDeviceIndex int `yaml:"output_device_index"`

	// WarmupFrames are read and discarded after the device opens, letting
	// the input settle.
	WarmupFrames int `yaml:"warmup_frames"`
}

type VADConfig struct {
	// RMSThreshold is compared with the RMS of samples scaled to [-1, 1].
	RMSThreshold     float64 `yaml:"rms_threshold"`
	RedemptionFrames int     `yaml:"redemption_frames"`
	MinSpeechFrames  int     `yaml:"min_speech_frames"`
	PrepadFrames     int     `yaml:"prepad_frames"`
}

type FeaturesConfig struct {
	NumMFCC   int `yaml:"n_mfcc"`
	FFTSize   int `yaml:"n_fft"`
	HopLength int `yaml:"hop_length"`
	NumMels   int `yaml:"n_mels"`
}

type TemplatesConfig struct {
	Dir       string `yaml:"dir"`
	CacheFile string `yaml:"cache_file"`
}

type ActionsConfig struct {
	Mode       ActionMode    `yaml:"mode"`
	Dir        string        `yaml:"dir"`
	Suffix     string        `yaml:"suffix"`
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type PipelineConfig struct {
	QueueSize int            `yaml:"queue_size"`
	Overflow  OverflowPolicy `yaml:"overflow"`
}

type PlaybackConfig struct {
	Backend PlaybackBackend `yaml:"backend"`
}

type MetricsConfig struct {
	// ListenAddr serves Prometheus metrics when non-empty, e.g. ":9464".
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the configuration used for any field a file leaves unset.
func Default() Config {
	return Config{
		LogLevel: LogInfo,
		Audio: AudioConfig{
			SampleRate:        16000,
			Channels:          1,
			ChunkSize:         1024,
			InputDeviceIndex:  DefaultDevice,
			OutputDeviceIndex: DefaultDevice,
			WarmupFrames:      50,
		},
		VAD: VADConfig{
			RMSThreshold:     0.02,
			RedemptionFrames: 8,
			MinSpeechFrames:  5,
			PrepadFrames:     4,
		},
		Features: FeaturesConfig{
			NumMFCC:   13,
			FFTSize:   2048,
			HopLength: 512,
			NumMels:   128,
		},
		Templates: TemplatesConfig{
			Dir: ".",
		},
		Actions: ActionsConfig{
			Mode:   ActionExecutable,
			Dir:    ".",
			Suffix: ".sh",
		},
		Pipeline: PipelineConfig{
			QueueSize: 256,
			Overflow:  OverflowDropOldest,
		},
		Playback: PlaybackConfig{
			Backend: PlaybackOto,
		},
	}
}
