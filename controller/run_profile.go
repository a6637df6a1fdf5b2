package controller

import (
	"context"
	"math"
	"time"

	"github.com/BiologIC-Colin/CameraSlider/motion"
)

// profileDt is the planner sampling interval RunProfile uses.
const profileDt = 20 * time.Millisecond

// doRunProfile samples the profile, then drives each consecutive
// sample pair under an absolute wall-clock deadline so that cumulative
// oversleep shortens subsequent pulse intervals rather than stretching
// the whole run. A segment that cannot keep up drops steps at its
// boundary; the final position is snapped to the planner's exact last
// sample on clean completion, never on cancellation.
func (c *Controller) doRunProfile(ctx context.Context, profile *motion.Profile) {
	c.status.status.Store(string(StatusRunning))
	c.driver.Enable(true)

	times, positions := motion.SampleProfile(profile, profileDt)
	totalT := times[len(times)-1]
	if totalT <= 0 {
		totalT = time.Nanosecond
	}

	start := time.Now()
	warnedClamp := false
	cancelled := false

segments:
	for i := 0; i < len(times)-1; i++ {
		t0, p0 := times[i], positions[i]
		t1, p1 := times[i+1], positions[i+1]

		p0c := clampF(p0, 0, c.cfg.TravelMM)
		p1c := clampF(p1, 0, c.cfg.TravelMM)
		dpMM := p1c - p0c
		positive := dpMM > 0
		steps := stepsFor(dpMM, c.cfg.StepsPerMM())

		segDuration := t1 - t0
		var idealPeriod time.Duration
		if steps > 0 {
			idealPeriod = segDuration / time.Duration(steps)
		} else {
			idealPeriod = segDuration
		}
		period := c.floorPeriod(idealPeriod)
		if steps > 0 && period > idealPeriod && !warnedClamp {
			c.logger.Warnw("run profile segment under-travels: period clamped by motion limits",
				"segment", i, "ideal_period", idealPeriod, "floored_period", period)
			warnedClamp = true
		}

		segDeadline := start.Add(t1)
		if c.runSegment(steps, positive, period, segDeadline) {
			cancelled = true
			break segments
		}

		if remaining := time.Until(segDeadline); remaining > 0 {
			time.Sleep(remaining)
		}
		c.status.progress.Store(float64(t1) / float64(totalT))
	}

	c.driver.Enable(false)

	if cancelled {
		c.status.status.Store(string(StatusStopped))
		return
	}

	final := clampF(positions[len(positions)-1], 0, c.cfg.TravelMM)
	c.status.posMM.Store(final)
	c.status.progress.Store(1)
	c.status.status.Store(string(StatusIdle))
}

// runSegment emits up to steps pulses, paced by period, stopping
// early on cancellation, the direction-appropriate endstop, or the
// segment's absolute deadline. Returns true only on cooperative
// cancellation — an endstop or deadline stop ends the segment but lets
// the run continue to the next one.
func (c *Controller) runSegment(steps int, positive bool, period time.Duration, deadline time.Time) (cancelled bool) {
	if steps <= 0 {
		return false
	}
	c.driver.SetDir(positive)
	endstopPressed := c.endstopCheck(positive)
	stepMM := 1 / c.cfg.StepsPerMM()

	for s := 0; s < steps; s++ {
		if c.cancel.Load() {
			return true
		}
		if endstopPressed() {
			return false
		}
		if !time.Now().Before(deadline) {
			return false
		}

		c.driver.PulseStep(c.cfg.StepPulseUS)
		if positive {
			c.addPos(stepMM)
		} else {
			c.addPos(-stepMM)
		}

		sleep := period
		if remaining := time.Until(deadline); remaining < sleep {
			sleep = remaining
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}
	}
	return false
}

func stepsFor(deltaMM, stepsPerMM float64) int {
	return int(math.Round(math.Abs(deltaMM) * stepsPerMM))
}
