package controller

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// minPeriod is the floor every inter-pulse interval is clamped to:
// the pulse's own high-time (doubled for both halves), the 20kHz
// absolute rate cap, and the configured max speed.
func (c *Controller) minPeriod() time.Duration {
	floor := 2 * time.Duration(c.cfg.StepPulseUS) * time.Microsecond

	const absoluteCap = time.Second / 20000
	if absoluteCap > floor {
		floor = absoluteCap
	}

	speedFloor := time.Duration(float64(time.Second) / (c.cfg.MaxSpeedMMPerS * c.cfg.StepsPerMM()))
	if speedFloor > floor {
		floor = speedFloor
	}
	return floor
}

// floorPeriod clamps an ideal inter-pulse interval to minPeriod.
func (c *Controller) floorPeriod(ideal time.Duration) time.Duration {
	if floor := c.minPeriod(); ideal < floor {
		return floor
	}
	return ideal
}

// stepPeriod derives a paced inter-pulse interval from a target
// speed, floored by minPeriod. Used by the uniform-period loops
// (relativeMove, seekEndstop); RunProfile computes its own
// per-segment ideal period and floors it directly.
func (c *Controller) stepPeriod(speedMMPerS float64) time.Duration {
	ideal := time.Duration(float64(time.Second) / (speedMMPerS * c.cfg.StepsPerMM()))
	return c.floorPeriod(ideal)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// addPos advances the tracked position by deltaMM, clamping to
// [0, travel_mm] so current_pos_mm never reports a position the
// slider physically can't reach.
func (c *Controller) addPos(deltaMM float64) {
	c.status.posMM.Store(clampF(c.status.posMM.Load()+deltaMM, 0, c.cfg.TravelMM))
}

// pulseLoop drives up to steps pulses in the given direction, paced
// by period, stopping early on cooperative cancellation or the
// direction-appropriate endstop. It never interrupts the
// backgroundCtx wait between pulses — the cancellation flag is only
// observed at the top of each iteration, bounding cancellation
// latency to one pulse period.
func (c *Controller) pulseLoop(steps int, positive bool, period time.Duration, endstopPressed func() bool) (cancelled bool) {
	if steps <= 0 {
		return false
	}
	c.driver.SetDir(positive)
	limiter := rate.NewLimiter(rate.Every(period), 1)
	stepMM := 1 / c.cfg.StepsPerMM()

	for i := 0; i < steps; i++ {
		if c.cancel.Load() {
			return true
		}
		if endstopPressed() {
			return false
		}

		// Wait before pulsing, not after: a freshly-constructed
		// limiter's burst token is available immediately, so the first
		// pulse fires without delay and every limiter.Wait from then on
		// paces the gap before the next pulse. Waiting after the pulse
		// would let that first free token collapse the gap between the
		// first two pulses instead. backgroundCtx is never cancelled by
		// Stop(), matching "does not interrupt the OS-level sleep of
		// the current pulse".
		_ = limiter.Wait(backgroundCtx)

		c.driver.PulseStep(c.cfg.StepPulseUS)
		if positive {
			c.addPos(stepMM)
		} else {
			c.addPos(-stepMM)
		}
	}
	return false
}

var backgroundCtx = context.Background()
