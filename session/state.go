package session

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the position of a driver in its single exchange.
type State int

const (
	StateIdle State = iota
	StateConnected
	StateSent
	// StateExecuting is only entered by the server.
	StateExecuting
	// StateReceiving is only entered by the client.
	StateReceiving
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateSent:
		return "sent"
	case StateExecuting:
		return "executing"
	case StateReceiving:
		return "receiving"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

type tracker struct {
	log   *zap.SugaredLogger
	state State
	// history is every state entered, in order, starting with StateIdle.
	history []State
}

func newTracker(log *zap.SugaredLogger) *tracker {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &tracker{
		log:     log.With("Session", uuid.NewString()),
		state:   StateIdle,
		history: []State{StateIdle},
	}
}

func (t *tracker) to(s State) {
	t.log.Debugw("state transition", "From", t.state, "To", s)
	t.state = s
	t.history = append(t.history, s)
}
