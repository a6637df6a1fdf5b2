package controller

import (
	"context"
	"math"

	"github.com/BiologIC-Colin/CameraSlider/motion"
)

// primeProximityMM is how close current_pos_mm must already be to the
// profile's first keyframe for Prime to skip moving entirely — close
// enough that a move would be pure backlash, not travel.
const primeProximityMM = 0.5

// primeMaxSpeedMMPerS caps Prime's travel speed, further bounded by
// the slider's own max speed.
const primeMaxSpeedMMPerS = 50.0

// doPrime homes first if not already homed, then moves to the
// profile's starting position unless already within primeProximityMM
// of it. The driver is disabled on every exit path.
func (c *Controller) doPrime(ctx context.Context, profile *motion.Profile) {
	c.status.status.Store(string(StatusPriming))

	if !c.status.homed.Load() {
		c.driver.Enable(true)
		if cancelled := c.runHomeSequence(ctx); cancelled {
			c.driver.Enable(false)
			c.status.status.Store(string(StatusStopped))
			return
		}
		c.driver.Enable(false)
	}

	target := clampF(profile.Keyframes[0].PosMM, 0, c.cfg.TravelMM)
	current := c.status.posMM.Load()
	if math.Abs(current-target) <= primeProximityMM {
		c.status.status.Store(string(StatusIdle))
		return
	}

	speed := math.Min(primeMaxSpeedMMPerS, c.cfg.MaxSpeedMMPerS)
	c.driver.Enable(true)
	cancelled := c.relativeMove(ctx, target-current, speed)
	c.driver.Enable(false)

	if cancelled {
		c.status.status.Store(string(StatusStopped))
		return
	}
	c.status.status.Store(string(StatusIdle))
}
