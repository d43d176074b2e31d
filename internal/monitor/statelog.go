package monitor

import "time"

// Transition is one retained state change: a register whose trailing
// remainder differed from the last one recorded under its name.
type Transition struct {
	When     time.Time
	Register string
	Index    int
}

// TransitionLog records register state transitions for one device.
//
// Implementations are not required to be safe for concurrent use; each
// device goroutine owns its log exclusively.
type TransitionLog interface {
	// Record evaluates one observed frame and reports whether it was
	// retained as a transition.
	Record(payload []byte, register, remainder string) bool

	// StoredFrames reports how many distinct payloads have been indexed.
	StoredFrames() int

	// SequenceLength reports how many transitions have been retained.
	SequenceLength() int
}

// StateLog is the in-memory TransitionLog. Both the payload index and the
// transition sequence grow without bound for the life of the process; the
// exported stored-frames and sequence-length gauges make that growth
// observable.
type StateLog struct {
	lastRemainder map[string]string
	payloadIndex  map[string]int
	transitions   []Transition

	now func() time.Time
}

// NewStateLog creates an empty log.
func NewStateLog() *StateLog {
	return &StateLog{
		lastRemainder: make(map[string]string),
		payloadIndex:  make(map[string]int),
		now:           time.Now,
	}
}

// Record applies the transition rules for one frame:
//
//   - A register seen before is retained only when its remainder changed,
//     including a change to the empty remainder.
//   - A register never seen before is retained only when its remainder is
//     non-empty.
//
// Retained frames get a content index, assigned on first sight of the
// payload and stable thereafter, and append one entry to the sequence.
func (l *StateLog) Record(payload []byte, register, remainder string) bool {
	last, seen := l.lastRemainder[register]
	if seen && remainder == last {
		return false
	}
	if !seen && remainder == "" {
		return false
	}

	l.lastRemainder[register] = remainder

	key := string(payload)
	index, ok := l.payloadIndex[key]
	if !ok {
		index = len(l.payloadIndex) + 1
		l.payloadIndex[key] = index
	}

	l.transitions = append(l.transitions, Transition{
		When:     l.now(),
		Register: register,
		Index:    index,
	})
	return true
}

// StoredFrames reports the number of distinct payloads indexed so far.
func (l *StateLog) StoredFrames() int {
	return len(l.payloadIndex)
}

// SequenceLength reports the number of retained transitions.
func (l *StateLog) SequenceLength() int {
	return len(l.transitions)
}

// Transitions returns a copy of the retained sequence, oldest first.
func (l *StateLog) Transitions() []Transition {
	out := make([]Transition, len(l.transitions))
	copy(out, l.transitions)
	return out
}
