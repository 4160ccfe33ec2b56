package construct

import (
	"fmt"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
)

// State is the lifecycle state of one construction run.
type State int

const (
	// StateIdle indicates the run has not received a chunk yet
	StateIdle State = iota
	// StateReceiving indicates chunks are being converted
	StateReceiving
	// StateFlushing indicates the source is exhausted and output is being written
	StateFlushing
	// StateDone indicates the run completed and the sink was committed
	StateDone
	// StateAborted indicates the run stopped early and the sink was rolled back
	StateAborted
)

// String returns a string representation of the run state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReceiving:
		return "receiving"
	case StateFlushing:
		return "flushing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

var transitions = map[State][]State{
	StateIdle:      {StateReceiving, StateFlushing, StateAborted},
	StateReceiving: {StateReceiving, StateFlushing, StateAborted},
	StateFlushing:  {StateDone, StateAborted},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type stateMachine struct {
	state State
}

func (m *stateMachine) transition(to State) error {
	if !CanTransition(m.state, to) {
		return errors.WrapFatal(
			fmt.Errorf("%w: %s -> %s", errors.ErrInvalidTransition, m.state, to),
			"Engine", "transition", "change run state")
	}
	m.state = to
	return nil
}
