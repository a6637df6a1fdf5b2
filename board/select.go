package board

import (
	"github.com/edaniels/golog"

	"github.com/BiologIC-Colin/CameraSlider/config"
)

// NewDriver attempts to initialise the hardware GPIO driver and falls
// back to the Simulator on any failure. The failure path is logged
// but never returned as an error — it is not user-visible beyond
// status text, per the driver selection policy.
func NewDriver(cfg config.SliderConfig, logger golog.Logger) StepperDriver {
	hw := NewGPIODriver(cfg, logger)
	if err := hw.Setup(); err != nil {
		logger.Infow("falling back to simulator driver", "error", err)
		sim := NewSimulator(logger)
		// Setup never fails for the simulator.
		_ = sim.Setup()
		return sim
	}
	return hw
}
