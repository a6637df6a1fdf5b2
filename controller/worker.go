package controller

import (
	"context"

	"github.com/pkg/errors"

	"github.com/BiologIC-Colin/CameraSlider/slidererr"
)

// run is the worker's top-level loop: block on the command queue when
// idle, clear the cancellation flag and any stale error at the top of
// each new command, then dispatch. Clearing the flag here (rather than
// in Stop) keeps a stale cancellation from one command from leaking
// into the next.
func (c *Controller) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-c.queue:
			c.cancel.Store(false)
			c.status.errMsg.Store("")
			c.doCommand(ctx, cmd)
		}
	}
}

// doCommand dispatches a single command, recovering from any
// unexpected failure inside the primitive so the worker never dies:
// the driver is disabled, the fault is recorded on Status, and the
// next command is still accepted normally.
func (c *Controller) doCommand(ctx context.Context, cmd command) {
	defer func() {
		if r := recover(); r != nil {
			c.driver.Enable(false)
			err := errors.Wrapf(slidererr.ErrRuntimeFault, "%v", r)
			c.logger.Errorw("worker command failed", "error", err)
			c.status.errMsg.Store(err.Error())
			c.status.status.Store(string(StatusError))
		}
	}()

	switch cmd.kind {
	case cmdHome:
		c.doHome(ctx)
	case cmdJog:
		c.doJog(ctx, cmd.distance, cmd.speed)
	case cmdRunProfile:
		c.doRunProfile(ctx, cmd.profile)
	case cmdPrime:
		c.doPrime(ctx, cmd.profile)
	}
}
