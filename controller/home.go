package controller

import "context"

// homeSeekFraction is the fraction of max speed used for the initial
// seek toward the min endstop. Homing runs slow and deliberate rather
// than at full speed since it's the one move with no prior position
// reference to sanity-check against.
const homeSeekFraction = 0.25

// homeSeekOvertravelMM is added to travel_mm so the initial seek can
// reach the min endstop even when current_pos_mm is unknown.
const homeSeekOvertravelMM = 10.0

// homeBackoffMM and homeBackoffSpeedMMPerS describe the back-off move
// away from the endstop after the first contact.
const (
	homeBackoffMM             = 5.0
	homeBackoffSpeedMMPerS    = 30.0
	homeReapproachSpeedMMPerS = 15.0
	homeReapproachMaxMM       = 10.0
)

// runHomeSequence drives the min-endstop homing sequence: seek, back
// off, slow re-approach. On clean completion it zeroes current_pos_mm
// and marks homed. It does not touch Status.status or the driver's
// enable state beyond what the seeks themselves require — callers
// (doHome, doPrime) own enabling/disabling and the terminal status.
func (c *Controller) runHomeSequence(ctx context.Context) (cancelled bool) {
	if c.seekEndstop(ctx, false, c.cfg.MaxSpeedMMPerS*homeSeekFraction, c.cfg.TravelMM+homeSeekOvertravelMM) {
		return true
	}
	if c.relativeMove(ctx, homeBackoffMM, homeBackoffSpeedMMPerS) {
		return true
	}
	if c.seekEndstop(ctx, false, homeReapproachSpeedMMPerS, homeReapproachMaxMM) {
		return true
	}

	c.status.posMM.Store(0)
	c.status.homed.Store(true)
	return false
}

// doHome drives the full homing sequence. Cancellation at any point
// leaves homed unchanged and returns to idle.
func (c *Controller) doHome(ctx context.Context) {
	c.status.status.Store(string(StatusHoming))
	c.driver.Enable(true)

	c.runHomeSequence(ctx)

	c.driver.Enable(false)
	c.status.status.Store(string(StatusIdle))
}
