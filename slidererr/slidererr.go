// Package slidererr defines the sentinel error kinds the motion
// subsystem raises, so callers can classify a failure with errors.Is
// instead of matching strings.
package slidererr

import "errors"

var (
	// ErrValidation marks a malformed profile or command rejected at
	// the boundary before it ever reaches the worker.
	ErrValidation = errors.New("validation error")

	// ErrHardwareUnavailable marks a GPIO initialisation failure that
	// caused a fallback to the simulator. Never fatal.
	ErrHardwareUnavailable = errors.New("hardware unavailable")

	// ErrRuntimeFault marks an unexpected failure inside a worker
	// command (a panic the worker recovered from).
	ErrRuntimeFault = errors.New("runtime fault")

	// ErrCancelled marks cooperative cancellation of a command via
	// Stop(). Not itself surfaced as Status.Error.
	ErrCancelled = errors.New("cancelled")
)
