package listener

import (
	"context"

	"speech-command-detection/voice_activity_detection"
)

type Interface interface {
	// ListenLoop runs capture and processing until the context is cancelled,
	// the handler returns ErrStopListening, or the source fails.
	ListenLoop(ctx context.Context) error
}

// FrameSource yields consecutive fixed-size mono frames. Returning io.EOF
// ends the stream cleanly.
type FrameSource interface {
	ReadFrame(ctx context.Context) ([]int16, error)
}

// Handler receives each finalized utterance on the processing goroutine.
type Handler func(ctx context.Context, utterance voice_activity_detection.Utterance) error
