// Package audio_capture reads fixed-size 16-bit PCM frames from a PortAudio
// input device.
package audio_capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// DefaultDevice selects the host's default input device.
const DefaultDevice = -1

// ErrSessionActive is returned by New while another session is still open.
var ErrSessionActive = errors.New("audio capture session already active")

var active atomic.Bool

type Config struct {
	SampleRate  int
	Channels    int
	ChunkSize   int
	DeviceIndex int
	Logger      *slog.Logger
}

type session struct {
	logger    *slog.Logger
	stream    *portaudio.Stream
	in        []int16
	channels  int
	chunkSize int

	closeOnce sync.Once
	closeErr  error
}

// New initialises PortAudio and opens an input stream. Only one session may
// be open at a time; the caller must Close it.
func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.Channels < 1 {
		return nil, fmt.Errorf("channels must be at least 1, got %d", cfg.Channels)
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.DeviceIndex < DefaultDevice {
		return nil, fmt.Errorf("invalid device index %d", cfg.DeviceIndex)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if !active.CompareAndSwap(false, true) {
		return nil, ErrSessionActive
	}

	s, err := open(cfg, logger)
	if err != nil {
		active.Store(false)
		return nil, err
	}
	return s, nil
}

func open(cfg *Config, logger *slog.Logger) (*session, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	device, err := inputDevice(cfg.DeviceIndex)
	if err != nil {
		terminate(logger)
		return nil, err
	}
	if device.MaxInputChannels < cfg.Channels {
		terminate(logger)
		return nil, fmt.Errorf("device %d (%s) supports %d input channels, %d requested",
			device.Index, device.Name, device.MaxInputChannels, cfg.Channels)
	}

	in := make([]int16, cfg.ChunkSize*cfg.Channels)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: cfg.Channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.ChunkSize,
	}

	stream, err := portaudio.OpenStream(params, in)
	if err != nil {
		terminate(logger)
		return nil, fmt.Errorf("open input stream on %q: %w", device.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		terminate(logger)
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	logger.Info("audio capture started",
		"device", device.Name,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
		"chunk_size", cfg.ChunkSize,
	)

	return &session{
		logger:    logger,
		stream:    stream,
		in:        in,
		channels:  cfg.Channels,
		chunkSize: cfg.ChunkSize,
	}, nil
}

func inputDevice(index int) (*portaudio.DeviceInfo, error) {
	if index == DefaultDevice {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("default input device: %w", err)
		}
		return device, nil
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return pickDevice(devices, index)
}

func pickDevice(devices []*portaudio.DeviceInfo, index int) (*portaudio.DeviceInfo, error) {
	for _, d := range devices {
		if d.Index == index {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no audio device with index %d", index)
}

func (s *session) ReadFrame(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := s.stream.Read()
	if errors.Is(err, portaudio.InputOverflowed) {
		// Samples were lost upstream but the buffer still holds a full chunk.
		s.logger.Warn("audio input overflowed")
	} else if err != nil {
		return nil, fmt.Errorf("read input stream: %w", err)
	}

	return Downmix(s.in, s.channels), nil
}

// Close stops the stream and releases PortAudio. It is safe to call more
// than once.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.stream.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop input stream: %w", err))
		}
		if err := s.stream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input stream: %w", err))
		}
		if err := portaudio.Terminate(); err != nil {
			errs = append(errs, fmt.Errorf("terminate portaudio: %w", err))
		}
		active.Store(false)
		s.closeErr = errors.Join(errs...)
		s.logger.Info("audio capture stopped")
	})
	return s.closeErr
}

func terminate(logger *slog.Logger) {
	if err := portaudio.Terminate(); err != nil {
		logger.Warn("error while freeing audio", "err", err)
	}
}

// Downmix averages interleaved channels into a new mono slice.
func Downmix(interleaved []int16, channels int) []int16 {
	if channels <= 1 {
		out := make([]int16, len(interleaved))
		copy(out, interleaved)
		return out
	}
	out := make([]int16, len(interleaved)/channels)
	for i := range out {
		var sum int
		for c := 0; c < channels; c++ {
			sum += int(interleaved[i*channels+c])
		}
		out[i] = int16(sum / channels)
	}
	return out
}

// Devices lists every device PortAudio can see with the host defaults
// marked.
func Devices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	// A host without an input or output device reports an error here.
	defIn, _ := portaudio.DefaultInputDevice()
	defOut, _ := portaudio.DefaultOutputDevice()

	return convertDevices(infos, defIn, defOut), nil
}

func convertDevices(infos []*portaudio.DeviceInfo, defIn, defOut *portaudio.DeviceInfo) []Device {
	devices := make([]Device, 0, len(infos))
	for _, d := range infos {
		dev := Device{
			Index:             d.Index,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			MaxOutputChannels: d.MaxOutputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		}
		if d.HostApi != nil {
			dev.HostAPI = d.HostApi.Name
		}
		dev.DefaultInput = defIn != nil && defIn.Index == d.Index
		dev.DefaultOutput = defOut != nil && defOut.Index == d.Index
		devices = append(devices, dev)
	}
	return devices
}
