package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

type portAudioPlayer struct {
	stream *portaudio.Stream
	out    []int16
	logger *slog.Logger
}

func newPortAudio(sampleRate, deviceIndex, chunkSize int, logger *slog.Logger) (*portAudioPlayer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("playback: initialize portaudio: %w", err)
	}

	device, err := outputDevice(deviceIndex)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	out := make([]int16, chunkSize)
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultHighOutputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: chunkSize,
	}

	stream, err := portaudio.OpenStream(params, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("playback: open output stream on %q: %w", device.Name, err)
	}

	logger.Debug("portaudio output ready", "device", device.Name, "sample_rate", sampleRate)

	return &portAudioPlayer{stream: stream, out: out, logger: logger}, nil
}

func outputDevice(index int) (*portaudio.DeviceInfo, error) {
	if index == DefaultDevice {
		device, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("playback: default output device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("playback: list devices: %w", err)
	}
	for _, d := range devices {
		if d.Index == index {
			if d.MaxOutputChannels < 1 {
				return nil, fmt.Errorf("playback: device %d (%s) has no output channels", index, d.Name)
			}
			return d, nil
		}
	}
	return nil, fmt.Errorf("playback: no audio device with index %d", index)
}

func (p *portAudioPlayer) Play(ctx context.Context, samples []int16) error {
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("playback: start output stream: %w", err)
	}

	for _, chunk := range Chunks(samples, len(p.out)) {
		if err := ctx.Err(); err != nil {
			p.stream.Abort()
			return err
		}

		copy(p.out, chunk)

		err := p.stream.Write()
		if errors.Is(err, portaudio.OutputUnderflowed) {
			p.logger.Debug("audio output underflowed")
		} else if err != nil {
			p.stream.Abort()
			return fmt.Errorf("playback: write output stream: %w", err)
		}
	}

	if err := p.stream.Stop(); err != nil {
		return fmt.Errorf("playback: stop output stream: %w", err)
	}

	return nil
}

func (p *portAudioPlayer) Close() error {
	return errors.Join(p.stream.Close(), portaudio.Terminate())
}

// Chunks splits samples into size-long pieces, zero-padding the last one.
func Chunks(samples []int16, size int) [][]int16 {
	if size <= 0 || len(samples) == 0 {
		return nil
	}

	n := (len(samples) + size - 1) / size
	out := make([][]int16, n)
	for i := range out {
		chunk := make([]int16, size)
		copy(chunk, samples[i*size:])
		out[i] = chunk
	}
	return out
}
