// Package controller implements the command-driven motion controller:
// a single-consumer command queue, a long-lived worker goroutine, and
// the homing/jog/prime/run-profile primitives that translate a
// motion.Profile into real-time step pulses under motion limits,
// endstop safety, and cooperative cancellation.
package controller

import (
	"context"

	"github.com/edaniels/golog"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/BiologIC-Colin/CameraSlider/board"
	"github.com/BiologIC-Colin/CameraSlider/config"
	"github.com/BiologIC-Colin/CameraSlider/motion"
	"github.com/BiologIC-Colin/CameraSlider/presets"
)

// queueDepth bounds how many commands may be waiting ahead of the one
// the worker is executing. Stop drains whatever is waiting; it is not
// a motion-planning lookahead.
const queueDepth = 32

// Controller is the process-wide owner of the stepper driver, the
// single worker goroutine that drives it, and the mutable motion
// state every status query observes. No two motion commands ever run
// concurrently — the slider is a single physical resource.
//
// Construct one with New per process and call Close once at shutdown;
// there is no package-level global.
type Controller struct {
	cfg     config.SliderConfig
	driver  board.StepperDriver
	presets *presets.Store
	logger  golog.Logger

	queue   chan command
	cancel  atomic.Bool
	status  *Status
	workers *goutils.StoppableWorkers
}

// New constructs a Controller and starts its worker goroutine. driver
// is expected to already be selected (board.NewDriver) but not yet
// enabled; the worker owns enabling and disabling it around each
// command.
func New(cfg config.SliderConfig, driver board.StepperDriver, store *presets.Store, logger golog.Logger) *Controller {
	c := &Controller{
		cfg:     cfg,
		driver:  driver,
		presets: store,
		logger:  logger,
		queue:   make(chan command, queueDepth),
		status:  newStatus(),
	}
	c.workers = goutils.NewBackgroundStoppableWorkers(c.run)
	return c
}

// EnqueueHome enqueues a Home command.
func (c *Controller) EnqueueHome() {
	c.queue <- command{kind: cmdHome}
}

// EnqueueJog enqueues a relative Jog command. speedMMPerS is clamped
// to [1, max_speed_mm_s] by the worker.
func (c *Controller) EnqueueJog(distanceMM, speedMMPerS float64) {
	c.queue <- command{kind: cmdJog, distance: distanceMM, speed: speedMMPerS}
}

// EnqueueRunProfile enqueues a RunProfile command.
func (c *Controller) EnqueueRunProfile(p *motion.Profile) {
	c.queue <- command{kind: cmdRunProfile, profile: p}
}

// EnqueuePrime enqueues a Prime command.
func (c *Controller) EnqueuePrime(p *motion.Profile) {
	c.queue <- command{kind: cmdPrime, profile: p}
}

// Stop asserts the cooperative cancellation flag and drains any
// commands the worker hasn't yet picked up. It does not interrupt the
// OS-level sleep of the pulse currently in flight — cancellation
// latency is bounded by one pulse period.
func (c *Controller) Stop() {
	c.cancel.Store(true)
	for {
		select {
		case <-c.queue:
		default:
			return
		}
	}
}

// GetStatus returns a point-in-time snapshot of the controller state.
func (c *Controller) GetStatus() Snapshot {
	return c.status.snapshot()
}

// ListPresets, SavePreset, and DeletePreset delegate to the shared
// preset store; preset persistence lives outside the motion core but
// is reachable through the controller so callers have one entry point.
func (c *Controller) ListPresets() (map[string]*motion.Profile, error) {
	return c.presets.List()
}

// SavePreset saves p under name, overwriting any existing preset of
// that name.
func (c *Controller) SavePreset(name string, p *motion.Profile) error {
	return c.presets.Save(name, p)
}

// DeletePreset removes the named preset, if present.
func (c *Controller) DeletePreset(name string) error {
	return c.presets.Delete(name)
}

// Close stops accepting new motion, disables and tears down the
// driver, and stops the worker goroutine. Safe to call once at
// process shutdown.
func (c *Controller) Close(ctx context.Context) error {
	c.Stop()
	c.driver.Enable(false)
	cleanupErr := c.driver.Cleanup()
	c.workers.Stop()
	return multierr.Combine(cleanupErr, ctx.Err())
}
