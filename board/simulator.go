package board

import (
	"sync"

	"github.com/edaniels/golog"
)

// Simulator is a StepperDriver that performs no real I/O. It logs its
// actions and exposes its endstop state as exported fields so test
// code can mutate them directly, matching the corpus's fakeboard
// convention of plain mutable fields instead of a mocking framework.
type Simulator struct {
	logger golog.Logger

	mu          sync.Mutex
	enabled     bool
	dirPositive bool

	// MinPressed and MaxPressed are read by ReadMinEndstop/ReadMaxEndstop.
	// Tests set these directly to simulate a pressed switch; set them
	// before enqueuing a command, not concurrently with a running one.
	MinPressed bool
	MaxPressed bool
}

// NewSimulator constructs a Simulator driver.
func NewSimulator(logger golog.Logger) *Simulator {
	return &Simulator{logger: logger, dirPositive: true}
}

// Setup implements StepperDriver.
func (s *Simulator) Setup() error {
	s.logger.Info("simulator driver setup complete")
	return nil
}

// Enable implements StepperDriver.
func (s *Simulator) Enable(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
	if enabled {
		s.logger.Debug("driver enabled (sim)")
	} else {
		s.logger.Debug("driver disabled (sim)")
	}
}

func (s *Simulator) isEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetDir implements StepperDriver.
func (s *Simulator) SetDir(positive bool) {
	s.mu.Lock()
	s.dirPositive = positive
	s.mu.Unlock()
}

// PulseStep implements StepperDriver. It is a no-op while disabled.
func (s *Simulator) PulseStep(pulseUS int) {
	if !s.isEnabled() {
		return
	}
	// No real pulse to emit; the controller owns inter-pulse pacing.
}

// ReadMinEndstop implements StepperDriver.
func (s *Simulator) ReadMinEndstop() bool {
	return s.MinPressed
}

// ReadMaxEndstop implements StepperDriver.
func (s *Simulator) ReadMaxEndstop() bool {
	return s.MaxPressed
}

// Cleanup implements StepperDriver.
func (s *Simulator) Cleanup() error {
	s.logger.Info("simulator driver cleanup")
	return nil
}
