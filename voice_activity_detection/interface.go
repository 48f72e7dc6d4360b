package voice_activity_detection

// Frame is one chunk of mono PCM with its threshold flag.
type Frame struct {
	Samples []int16
	Active  bool
}

type State int

const (
	StateIdle State = iota
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	}

	return "unknown"
}

type EventKind int

const (
	// EventNone means the frame was absorbed without a state change.
	EventNone EventKind = iota

	// EventSpeechStart means the detector just moved from idle to speaking.
	EventSpeechStart

	// EventMisfire means an utterance closed with too few active frames and
	// was discarded.
	EventMisfire

	// EventUtterance means an utterance closed and Event.Utterance is set.
	EventUtterance
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventSpeechStart:
		return "speech_start"
	case EventMisfire:
		return "misfire"
	case EventUtterance:
		return "utterance"
	}

	return "unknown"
}

// Utterance is a finalized run of frames flattened into one sample buffer.
type Utterance struct {
	Samples      []int16
	Frames       int
	ActiveFrames int
}

type Event struct {
	Kind      EventKind
	Utterance *Utterance

	// ActiveFrames is set for misfires so callers can report how short the
	// discarded run was.
	ActiveFrames int
}

type Interface interface {
	Step(frame Frame) Event
	State() State
	Reset()
}
