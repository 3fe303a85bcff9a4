package driver

import (
	"sync/atomic"
	"time"
)

// Phase is the state of a Runner.
type Phase uint32

const (
	PhaseIdle Phase = iota
	PhaseCollecting
	PhaseChecking
	PhaseReporting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCollecting:
		return "collecting"
	case PhaseChecking:
		return "checking"
	case PhaseReporting:
		return "reporting"
	default:
		return "unknown"
	}
}

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary of a run.
type PhaseEvent struct {
	Phase   Phase
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Run.
type PhaseObserver func(PhaseEvent)

type phaseTracker struct {
	current  atomic.Uint32
	observer PhaseObserver
	started  time.Time
}

func (t *phaseTracker) load() Phase {
	return Phase(t.current.Load())
}

// enter closes the current phase (if any) and opens next.
func (t *phaseTracker) enter(next Phase) {
	prev := Phase(t.current.Swap(uint32(next)))
	now := time.Now()
	if t.observer != nil && prev != PhaseIdle {
		t.observer(PhaseEvent{Phase: prev, Status: PhaseEnd, Elapsed: now.Sub(t.started)})
	}
	t.started = now
	if t.observer != nil && next != PhaseIdle {
		t.observer(PhaseEvent{Phase: next, Status: PhaseStart})
	}
}
