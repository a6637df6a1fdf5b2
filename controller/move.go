package controller

import (
	"context"
	"math"
)

// relativeMove moves by distanceMM (signed) at speedMMPerS, clamping
// the target to [0, travel_mm] and checking the endstop on the
// direction of travel before every pulse. Returns true if cancelled.
func (c *Controller) relativeMove(ctx context.Context, distanceMM, speedMMPerS float64) (cancelled bool) {
	speed := clampF(speedMMPerS, 1, c.cfg.MaxSpeedMMPerS)
	start := c.status.posMM.Load()
	target := clampF(start+distanceMM, 0, c.cfg.TravelMM)
	deltaMM := target - start
	positive := deltaMM > 0
	steps := int(math.Round(math.Abs(deltaMM) * c.cfg.StepsPerMM()))

	return c.pulseLoop(steps, positive, c.stepPeriod(speed), c.endstopCheck(positive))
}

// seekEndstop drives toward the endstop in the given direction at
// speedMMPerS for up to maxDistanceMM, stopping as soon as the
// corresponding endstop reads pressed. Returns true if cancelled
// before the endstop tripped.
func (c *Controller) seekEndstop(ctx context.Context, positive bool, speedMMPerS, maxDistanceMM float64) (cancelled bool) {
	steps := int(math.Round(maxDistanceMM * c.cfg.StepsPerMM()))
	return c.pulseLoop(steps, positive, c.stepPeriod(speedMMPerS), c.endstopCheck(positive))
}

// endstopCheck returns the direction-appropriate endstop reader: max
// when travelling positive, min when travelling negative.
func (c *Controller) endstopCheck(positive bool) func() bool {
	if positive {
		return c.driver.ReadMaxEndstop
	}
	return c.driver.ReadMinEndstop
}

// doJog performs a relative move at the requested speed, then
// disables the driver and returns to idle.
func (c *Controller) doJog(ctx context.Context, distanceMM, speedMMPerS float64) {
	c.status.status.Store(string(StatusJogging))
	c.driver.Enable(true)
	c.relativeMove(ctx, distanceMM, speedMMPerS)
	c.driver.Enable(false)
	c.status.status.Store(string(StatusIdle))
}
