package recognizer

import (
	"context"

	"speech-command-detection/classifier"
	"speech-command-detection/voice_activity_detection"
)

type Interface interface {
	// Recognize classifies one utterance of 16-bit PCM.
	Recognize(ctx context.Context, samples []int16) (classifier.Result, error)

	// Handle is a listener.Handler: it recognizes the utterance and
	// dispatches an action for a confident label.
	Handle(ctx context.Context, utterance voice_activity_detection.Utterance) error
}
