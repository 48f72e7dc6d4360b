package playback

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const pollInterval = 10 * time.Millisecond

// oto permits a single context per process.
var (
	otoMu         sync.Mutex
	otoContext    *oto.Context
	otoSampleRate int
)

type otoPlayer struct {
	ctx    *oto.Context
	logger *slog.Logger
}

func newOto(sampleRate int, logger *slog.Logger) (*otoPlayer, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoContext == nil {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}

		c, ready, err := oto.NewContext(op)
		if err != nil {
			return nil, fmt.Errorf("playback: create oto context: %w", err)
		}
		<-ready

		otoContext = c
		otoSampleRate = sampleRate
		logger.Debug("oto context ready", "sample_rate", sampleRate)
	}

	if otoSampleRate != sampleRate {
		return nil, fmt.Errorf("playback: oto context already running at %d Hz, %d requested", otoSampleRate, sampleRate)
	}

	return &otoPlayer{ctx: otoContext, logger: logger}, nil
}

func (p *otoPlayer) Play(ctx context.Context, samples []int16) error {
	player := p.ctx.NewPlayer(bytes.NewReader(PCMBytes(samples)))
	defer player.Close()

	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return player.Err()
}

// Close is a no-op; the shared oto context lives for the whole process.
func (p *otoPlayer) Close() error {
	return nil
}
