package audio_capture

import "context"

// Interface is an open capture session delivering fixed-size mono frames.
type Interface interface {
	// ReadFrame blocks until the next chunk of ChunkSize mono samples is
	// available. The returned slice is owned by the caller.
	ReadFrame(ctx context.Context) ([]int16, error)
	Close() error
}

// Device describes a PortAudio device.
type Device struct {
	Index             int
	Name              string
	HostAPI           string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	DefaultInput      bool
	DefaultOutput     bool
}
