package voice_activity_detection

import (
	"fmt"

	"speech-command-detection/ring_buffer"
)

// Config holds the hangover parameters, all counted in frames.
type Config struct {
	RedemptionFrames int
	MinSpeechFrames  int
	PrepadFrames     int
}

type detectorImpl struct {
	redemptionFrames int
	minSpeechFrames  int
	prepadFrames     int

	state             State
	redemptionCounter int
	buffer            *ring_buffer.Buffer[Frame]
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.RedemptionFrames < 0 {
		return nil, fmt.Errorf("redemption frames must not be negative, got %d", cfg.RedemptionFrames)
	}

	if cfg.MinSpeechFrames < 0 {
		return nil, fmt.Errorf("min speech frames must not be negative, got %d", cfg.MinSpeechFrames)
	}

	if cfg.PrepadFrames < 0 {
		return nil, fmt.Errorf("prepad frames must not be negative, got %d", cfg.PrepadFrames)
	}

	return &detectorImpl{
		redemptionFrames: cfg.RedemptionFrames,
		minSpeechFrames:  cfg.MinSpeechFrames,
		prepadFrames:     cfg.PrepadFrames,
		state:            StateIdle,
		buffer:           ring_buffer.New[Frame](cfg.PrepadFrames + 1),
	}, nil
}

func (d *detectorImpl) State() State {
	return d.state
}

func (d *detectorImpl) Reset() {
	d.state = StateIdle
	d.redemptionCounter = 0
	d.buffer.Clear()
}

// Step consumes one frame. A dip below the threshold only closes the
// utterance once more than redemptionFrames inactive frames arrive in a row;
// any active frame in between cancels the pending stop.
func (d *detectorImpl) Step(frame Frame) Event {
	event := Event{Kind: EventNone}

	d.buffer.Push(frame)

	if frame.Active && d.redemptionCounter != 0 {
		d.redemptionCounter = 0
	}

	if frame.Active && d.state == StateIdle {
		d.state = StateSpeaking
		event.Kind = EventSpeechStart
	}

	if !frame.Active && d.state == StateSpeaking {
		d.redemptionCounter++

		if d.redemptionCounter > d.redemptionFrames {
			d.redemptionCounter = 0
			d.state = StateIdle

			return d.finalize()
		}
	}

	if d.state == StateIdle {
		d.buffer.TrimFront(d.prepadFrames)
	}

	return event
}

func (d *detectorImpl) finalize() Event {
	frames := d.buffer.Drain()

	active := 0
	total := 0

	for _, f := range frames {
		if f.Active {
			active++
		}

		total += len(f.Samples)
	}

	if active <= d.minSpeechFrames {
		return Event{Kind: EventMisfire, ActiveFrames: active}
	}

	samples := make([]int16, 0, total)
	for _, f := range frames {
		samples = append(samples, f.Samples...)
	}

	return Event{
		Kind: EventUtterance,
		Utterance: &Utterance{
			Samples:      samples,
			Frames:       len(frames),
			ActiveFrames: active,
		},
		ActiveFrames: active,
	}
}
