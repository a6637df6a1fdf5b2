package controller

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"github.com/BiologIC-Colin/CameraSlider/board"
	"github.com/BiologIC-Colin/CameraSlider/config"
	"github.com/BiologIC-Colin/CameraSlider/easing"
	"github.com/BiologIC-Colin/CameraSlider/motion"
	"github.com/BiologIC-Colin/CameraSlider/presets"
)

func newTestController(t *testing.T) (*Controller, *board.Simulator) {
	t.Helper()
	return newTestControllerWithTravel(t, 500)
}

func newTestControllerWithTravel(t *testing.T, travelMM float64) (*Controller, *board.Simulator) {
	t.Helper()

	cfg := config.Default()
	cfg.TravelMM = travelMM
	cfg.MaxSpeedMMPerS = 100
	cfg.MaxAccelMMPerS2 = 300

	logger := golog.NewTestLogger(t)
	sim := board.NewSimulator(logger)
	test.That(t, sim.Setup(), test.ShouldBeNil)

	store, err := presets.NewStore(filepath.Join(t.TempDir(), "presets.json"))
	test.That(t, err, test.ShouldBeNil)

	ctl := New(cfg, sim, store, logger)
	t.Cleanup(func() {
		test.That(t, ctl.Close(context.Background()), test.ShouldBeNil)
	})
	return ctl, sim
}

func waitForStatus(t *testing.T, ctl *Controller, want State) {
	t.Helper()
	testutils.WaitForAssertion(t, func(t testing.TB) {
		test.That(t, ctl.GetStatus().Status, test.ShouldEqual, want)
	})
}

// waitForSnapshot waits until cond holds for the controller's status.
// Status starts out idle, so waiting on a command's own effect first
// keeps a following waitForStatus(StatusIdle) from passing before the
// worker has picked the command up.
func waitForSnapshot(t *testing.T, ctl *Controller, cond func(Snapshot) bool) {
	t.Helper()
	testutils.WaitForAssertion(t, func(t testing.TB) {
		test.That(t, cond(ctl.GetStatus()), test.ShouldBeTrue)
	})
}

func isHomed(s Snapshot) bool { return s.Homed }

// Homing with the min endstop already pressed completes in finite
// time without ever pulsing further toward it.
func TestHomeWithMinEndstopAlreadyPressed(t *testing.T) {
	ctl, sim := newTestController(t)
	sim.MinPressed = true

	ctl.EnqueueHome()
	waitForSnapshot(t, ctl, isHomed)
	waitForStatus(t, ctl, StatusIdle)

	snap := ctl.GetStatus()
	test.That(t, snap.Homed, test.ShouldBeTrue)
	test.That(t, snap.PosMM, test.ShouldEqual, 0.0)
}

// Cancellation mid-run ends the run as stopped with progress below 1.
func TestStopCancelsRunningProfile(t *testing.T) {
	ctl, _ := newTestController(t)

	p, err := motion.NewProfile(500, []motion.Keyframe{
		{T: 0, PosMM: 0},
		{T: 10, PosMM: 400, Ease: easing.Linear{}},
	}, ctl.cfg.MaxSpeedMMPerS, ctl.cfg.MaxAccelMMPerS2)
	test.That(t, err, test.ShouldBeNil)

	ctl.EnqueueRunProfile(p)
	waitForStatus(t, ctl, StatusRunning)

	time.Sleep(200 * time.Millisecond)
	ctl.Stop()

	waitForStatus(t, ctl, StatusStopped)

	snap := ctl.GetStatus()
	test.That(t, snap.Progress, test.ShouldBeLessThan, 1.0)
}

// Priming when already within 0.5mm of the profile start performs no
// move.
func TestPrimeNoMoveWhenAlreadyAtStart(t *testing.T) {
	ctl, sim := newTestController(t)
	sim.MinPressed = true

	ctl.EnqueueHome()
	waitForSnapshot(t, ctl, isHomed)
	waitForStatus(t, ctl, StatusIdle)
	test.That(t, ctl.GetStatus().Homed, test.ShouldBeTrue)

	p, err := motion.NewProfile(500, []motion.Keyframe{
		{T: 0, PosMM: 0.1},
		{T: 1, PosMM: 100},
	}, 100, 300)
	test.That(t, err, test.ShouldBeNil)

	ctl.EnqueuePrime(p)
	waitForStatus(t, ctl, StatusIdle)

	snap := ctl.GetStatus()
	test.That(t, snap.PosMM, test.ShouldEqual, 0.0)
	test.That(t, snap.Homed, test.ShouldBeTrue)
}

func TestPrimeHomesFirstWhenNotHomed(t *testing.T) {
	ctl, sim := newTestController(t)
	sim.MinPressed = true

	p, err := motion.NewProfile(500, []motion.Keyframe{
		{T: 0, PosMM: 0},
		{T: 1, PosMM: 100},
	}, 100, 300)
	test.That(t, err, test.ShouldBeNil)

	ctl.EnqueuePrime(p)
	waitForSnapshot(t, ctl, isHomed)
	waitForStatus(t, ctl, StatusIdle)

	snap := ctl.GetStatus()
	test.That(t, snap.Homed, test.ShouldBeTrue)
	test.That(t, snap.PosMM, test.ShouldEqual, 0.0)
}

func TestJogMovesRelativeAndReturnsIdle(t *testing.T) {
	ctl, _ := newTestController(t)

	ctl.EnqueueJog(10, 1000) // speed clamps to MaxSpeedMMPerS
	waitForSnapshot(t, ctl, func(s Snapshot) bool { return s.PosMM == 10.0 })
	waitForStatus(t, ctl, StatusIdle)

	test.That(t, ctl.GetStatus().PosMM, test.ShouldEqual, 10.0)
}

// current_pos_mm stays within [0, travel_mm] even when a jog targets
// beyond travel.
func TestJogClampsPositionToTravel(t *testing.T) {
	ctl, _ := newTestControllerWithTravel(t, 2)

	ctl.EnqueueJog(10000, 100)
	waitForSnapshot(t, ctl, func(s Snapshot) bool { return s.PosMM == ctl.cfg.TravelMM })
	waitForStatus(t, ctl, StatusIdle)

	test.That(t, ctl.GetStatus().PosMM, test.ShouldEqual, ctl.cfg.TravelMM)
}

// After an uncancelled RunProfile, current_pos_mm equals the
// planner's last position exactly, regardless of timing drift during
// the run.
func TestRunProfileSnapsToPlannerFinalPosition(t *testing.T) {
	ctl, _ := newTestController(t)

	p, err := motion.NewProfile(500, []motion.Keyframe{
		{T: 0, PosMM: 0},
		{T: 0.2, PosMM: 123.456, Ease: easing.Linear{}},
	}, ctl.cfg.MaxSpeedMMPerS, ctl.cfg.MaxAccelMMPerS2)
	test.That(t, err, test.ShouldBeNil)

	ctl.EnqueueRunProfile(p)
	waitForSnapshot(t, ctl, func(s Snapshot) bool { return s.Progress == 1.0 })
	waitForStatus(t, ctl, StatusIdle)

	snap := ctl.GetStatus()
	test.That(t, snap.Progress, test.ShouldEqual, 1.0)
	test.That(t, snap.PosMM, test.ShouldEqual, 123.456)
}

func TestGetStatusInitialSnapshot(t *testing.T) {
	ctl, _ := newTestController(t)
	snap := ctl.GetStatus()
	test.That(t, snap.Status, test.ShouldEqual, StatusIdle)
	test.That(t, snap.Homed, test.ShouldBeFalse)
	test.That(t, snap.Error, test.ShouldBeNil)
}

func TestPresetDelegation(t *testing.T) {
	ctl, _ := newTestController(t)

	p, err := motion.NewProfile(500, []motion.Keyframe{
		{T: 0, PosMM: 0},
		{T: 1, PosMM: 50},
	}, 100, 300)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, ctl.SavePreset("p1", p), test.ShouldBeNil)

	all, err := ctl.ListPresets()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(all), test.ShouldEqual, 1)

	test.That(t, ctl.DeletePreset("p1"), test.ShouldBeNil)
	all, err = ctl.ListPresets()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(all), test.ShouldEqual, 0)
}
