package playback

import "context"

// Interface replays mono 16-bit PCM and blocks until it has been heard.
type Interface interface {
	Play(ctx context.Context, samples []int16) error
	Close() error
}
