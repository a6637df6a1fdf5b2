package board

import (
	"fmt"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BiologIC-Colin/CameraSlider/config"
	"github.com/BiologIC-Colin/CameraSlider/slidererr"
)

// GPIODriver drives a step/dir/enable stepper controller wired to BCM
// GPIO pins via periph.io, with two pull-up endstop inputs. Enable is
// active-low (DRV8825-style).
type GPIODriver struct {
	cfg    config.SliderConfig
	logger golog.Logger

	stepPin   gpio.PinIO
	dirPin    gpio.PinIO
	enablePin gpio.PinIO
	minPin    gpio.PinIO
	maxPin    gpio.PinIO

	// ready is set once Setup has succeeded; PulseStep is a no-op
	// until then.
	ready bool
}

// NewGPIODriver constructs (but does not yet initialise) a hardware
// driver for the given pin map.
func NewGPIODriver(cfg config.SliderConfig, logger golog.Logger) *GPIODriver {
	return &GPIODriver{cfg: cfg, logger: logger}
}

func bcmPinName(n int) string {
	return fmt.Sprintf("GPIO%d", n)
}

func resolvePin(n int) (gpio.PinIO, error) {
	pin := gpioreg.ByName(bcmPinName(n))
	if pin == nil {
		return nil, errors.Wrapf(slidererr.ErrHardwareUnavailable, "no gpio pin registered for BCM %d", n)
	}
	return pin, nil
}

// Setup implements StepperDriver. It initialises the periph.io host
// drivers and resolves every configured pin; any failure here is the
// signal NewDriver uses to fall back to the Simulator.
func (d *GPIODriver) Setup() error {
	if _, err := host.Init(); err != nil {
		return errors.Wrap(slidererr.ErrHardwareUnavailable, err.Error())
	}

	var err error
	if d.stepPin, err = resolvePin(d.cfg.Pins.StepPin); err != nil {
		return err
	}
	if d.dirPin, err = resolvePin(d.cfg.Pins.DirPin); err != nil {
		return err
	}
	if d.enablePin, err = resolvePin(d.cfg.Pins.EnablePin); err != nil {
		return err
	}
	if d.minPin, err = resolvePin(d.cfg.Pins.MinEndstopPin); err != nil {
		return err
	}
	if d.maxPin, err = resolvePin(d.cfg.Pins.MaxEndstopPin); err != nil {
		return err
	}

	if err := d.stepPin.Out(gpio.Low); err != nil {
		return errors.Wrap(slidererr.ErrHardwareUnavailable, err.Error())
	}
	if err := d.dirPin.Out(gpio.Low); err != nil {
		return errors.Wrap(slidererr.ErrHardwareUnavailable, err.Error())
	}
	// Active-low enable: default to disabled (logic high).
	if err := d.enablePin.Out(gpio.High); err != nil {
		return errors.Wrap(slidererr.ErrHardwareUnavailable, err.Error())
	}
	if err := d.minPin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return errors.Wrap(slidererr.ErrHardwareUnavailable, err.Error())
	}
	if err := d.maxPin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return errors.Wrap(slidererr.ErrHardwareUnavailable, err.Error())
	}

	d.ready = true
	d.logger.Infow("gpio driver initialised",
		"step", d.cfg.Pins.StepPin, "dir", d.cfg.Pins.DirPin, "enable", d.cfg.Pins.EnablePin,
		"min", d.cfg.Pins.MinEndstopPin, "max", d.cfg.Pins.MaxEndstopPin)
	return nil
}

// Enable implements StepperDriver. Active-low: driving the pin low
// enables the driver IC. Before the enable pin is resolved by Setup
// this is a no-op.
func (d *GPIODriver) Enable(enabled bool) {
	if d.enablePin == nil {
		return
	}
	level := gpio.High
	if enabled {
		level = gpio.Low
	}
	if err := d.enablePin.Out(level); err != nil {
		d.logger.Warnw("failed to set enable pin", "error", err)
	}
}

// SetDir implements StepperDriver.
func (d *GPIODriver) SetDir(positive bool) {
	level := gpio.Low
	if positive {
		level = gpio.High
	}
	if err := d.dirPin.Out(level); err != nil {
		d.logger.Warnw("failed to set direction pin", "error", err)
	}
}

// PulseStep implements StepperDriver with a calibrated busy-wait for
// the high-time, since time.Sleep's scheduler-level resolution is too
// coarse for microsecond-scale pulses (see the pulse-timing design
// note for the tradeoff). It is a no-op until Setup has succeeded.
func (d *GPIODriver) PulseStep(pulseUS int) {
	if !d.ready {
		return
	}
	if err := d.stepPin.Out(gpio.High); err != nil {
		d.logger.Warnw("failed to raise step pin", "error", err)
		return
	}
	busyWaitMicros(pulseUS)
	if err := d.stepPin.Out(gpio.Low); err != nil {
		d.logger.Warnw("failed to lower step pin", "error", err)
	}
}

func busyWaitMicros(us int) {
	if us <= 0 {
		return
	}
	deadline := time.Now().Add(time.Duration(us) * time.Microsecond)
	for time.Now().Before(deadline) {
		// busy-wait: at microsecond scale, sleeping would oversleep
		// past the scheduler's quantum far more than it would ever
		// save in CPU time.
	}
}

// ReadMinEndstop implements StepperDriver, applying invert_endstops on
// top of the pull-up-active-low-pressed convention.
func (d *GPIODriver) ReadMinEndstop() bool {
	pressed := d.minPin.Read() == gpio.Low
	if d.cfg.InvertEndstops {
		return !pressed
	}
	return pressed
}

// ReadMaxEndstop implements StepperDriver.
func (d *GPIODriver) ReadMaxEndstop() bool {
	pressed := d.maxPin.Read() == gpio.Low
	if d.cfg.InvertEndstops {
		return !pressed
	}
	return pressed
}

// Cleanup implements StepperDriver, returning pins to a safe,
// disabled, free-wheeling state.
func (d *GPIODriver) Cleanup() error {
	d.Enable(false)
	return nil
}
