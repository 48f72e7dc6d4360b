// Package playback replays recorded utterances so the user can check them
// before they are saved.
package playback

import (
	"encoding/binary"
	"fmt"
	"log/slog"
)

const (
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
)

// DefaultDevice selects the host's default output device.
const DefaultDevice = -1

type Config struct {
	Backend    string
	SampleRate int

	// DeviceIndex is only honoured by the portaudio backend.
	DeviceIndex int
	ChunkSize   int
	Logger      *slog.Logger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case BackendOto, "":
		p, err := newOto(cfg.SampleRate, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendPortAudio:
		chunk := cfg.ChunkSize
		if chunk <= 0 {
			chunk = 1024
		}
		p, err := newPortAudio(cfg.SampleRate, cfg.DeviceIndex, chunk, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	return nil, fmt.Errorf("unknown playback backend %q", cfg.Backend)
}

// PCMBytes encodes samples as signed 16-bit little-endian bytes.
func PCMBytes(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}
