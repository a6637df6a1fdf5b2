package controller

import (
	"math"

	"go.uber.org/atomic"
)

// State is the controller's status enum. The worker is the only
// writer; every other reader observes it through Status's atomic
// fields.
type State string

// The controller's status values. Transitions happen only inside the
// worker goroutine.
const (
	StatusIdle    State = "idle"
	StatusHoming  State = "homing"
	StatusJogging State = "jogging"
	StatusPriming State = "priming"
	StatusRunning State = "running"
	StatusStopped State = "stopped"
	StatusError   State = "error"
)

// Status holds the controller's mutable motion state. Each field is
// its own atomic so GetStatus never takes a lock against the
// worker's writes; status reads are eventually consistent, which is
// fine for a poll-based status endpoint.
type Status struct {
	status   atomic.String
	posMM    atomic.Float64
	homed    atomic.Bool
	progress atomic.Float64
	errMsg   atomic.String
}

func newStatus() *Status {
	s := &Status{}
	s.status.Store(string(StatusIdle))
	return s
}

// Snapshot is a point-in-time copy of Status returned by GetStatus.
type Snapshot struct {
	Status   State
	PosMM    float64
	Homed    bool
	Progress float64
	Error    *string
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func (s *Status) snapshot() Snapshot {
	snap := Snapshot{
		Status:   State(s.status.Load()),
		PosMM:    round3(s.posMM.Load()),
		Homed:    s.homed.Load(),
		Progress: round3(s.progress.Load()),
	}
	if e := s.errMsg.Load(); e != "" {
		snap.Error = &e
	}
	return snap
}
