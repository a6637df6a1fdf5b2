// Package config holds the slider's mechanical constants, motion
// limits, and GPIO pin map, with permissive environment-variable
// overrides.
package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// GPIOPins maps the slider's wiring to BCM pin numbers.
type GPIOPins struct {
	StepPin        int
	DirPin         int
	EnablePin      int
	MinEndstopPin  int
	MaxEndstopPin  int
}

// SliderConfig is the immutable-after-load description of the
// mechanical slider and its motion limits.
type SliderConfig struct {
	// Mechanics
	StepsPerRev    int
	Microstep      int
	LeadMMPerRev   float64
	TravelMM       float64

	// Motion limits
	MaxSpeedMMPerS  float64
	MaxAccelMMPerS2 float64

	// Pins
	Pins GPIOPins

	// Timing
	StepPulseUS int

	// Misc
	InvertEndstops bool
}

// Default returns the default slider configuration (1.8° motor, DRV8825
// at 16x microstepping, TR8x8 lead screw, 120cm travel).
func Default() SliderConfig {
	return SliderConfig{
		StepsPerRev:  200,
		Microstep:    16,
		LeadMMPerRev: 8.0,
		TravelMM:     1200.0,

		MaxSpeedMMPerS:  120.0,
		MaxAccelMMPerS2: 300.0,

		Pins: GPIOPins{
			StepPin:       18,
			DirPin:        23,
			EnablePin:     24,
			MinEndstopPin: 17,
			MaxEndstopPin: 27,
		},

		StepPulseUS: 4,

		InvertEndstops: false,
	}
}

// StepsPerMM is the derived conversion factor from millimetres to
// motor microsteps.
func (c SliderConfig) StepsPerMM() float64 {
	return float64(c.StepsPerRev*c.Microstep) / c.LeadMMPerRev
}

// Validate checks the invariants SliderConfig must hold.
func (c SliderConfig) Validate() error {
	if c.LeadMMPerRev <= 0 || c.StepsPerMM() <= 0 {
		return errors.New("steps_per_mm must be > 0: check steps_per_rev, microstep, lead_mm_per_rev")
	}
	if c.TravelMM <= 0 {
		return errors.New("travel_mm must be > 0")
	}
	if c.MaxSpeedMMPerS <= 0 {
		return errors.New("max_speed_mm_s must be > 0")
	}
	if c.MaxAccelMMPerS2 <= 0 {
		return errors.New("max_accel_mm_s2 must be > 0")
	}
	return nil
}

// truthy mirrors the original's `in ("1", "true", "yes")` membership
// test for SLIDER_INVERT_ENDSTOPS, rather than cast's broader bool
// grammar, so values like "on"/"0" keep the documented contract.
func truthy(s string) bool {
	switch s {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// Load builds a SliderConfig from defaults, applying the
// SLIDER_* environment overrides documented in the wiring contract.
func Load() (SliderConfig, error) {
	cfg := Default()

	if v, ok := os.LookupEnv("SLIDER_TRAVEL_MM"); ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return SliderConfig{}, errors.Wrap(err, "SLIDER_TRAVEL_MM")
		}
		cfg.TravelMM = f
	}
	if v, ok := os.LookupEnv("SLIDER_MAX_SPEED"); ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return SliderConfig{}, errors.Wrap(err, "SLIDER_MAX_SPEED")
		}
		cfg.MaxSpeedMMPerS = f
	}
	if v, ok := os.LookupEnv("SLIDER_MAX_ACCEL"); ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return SliderConfig{}, errors.Wrap(err, "SLIDER_MAX_ACCEL")
		}
		cfg.MaxAccelMMPerS2 = f
	}
	if v, ok := os.LookupEnv("SLIDER_STEP_PIN"); ok {
		i, err := cast.ToIntE(v)
		if err != nil {
			return SliderConfig{}, errors.Wrap(err, "SLIDER_STEP_PIN")
		}
		cfg.Pins.StepPin = i
	}
	if v, ok := os.LookupEnv("SLIDER_DIR_PIN"); ok {
		i, err := cast.ToIntE(v)
		if err != nil {
			return SliderConfig{}, errors.Wrap(err, "SLIDER_DIR_PIN")
		}
		cfg.Pins.DirPin = i
	}
	if v, ok := os.LookupEnv("SLIDER_ENABLE_PIN"); ok {
		i, err := cast.ToIntE(v)
		if err != nil {
			return SliderConfig{}, errors.Wrap(err, "SLIDER_ENABLE_PIN")
		}
		cfg.Pins.EnablePin = i
	}
	if v, ok := os.LookupEnv("SLIDER_MIN_PIN"); ok {
		i, err := cast.ToIntE(v)
		if err != nil {
			return SliderConfig{}, errors.Wrap(err, "SLIDER_MIN_PIN")
		}
		cfg.Pins.MinEndstopPin = i
	}
	if v, ok := os.LookupEnv("SLIDER_MAX_PIN"); ok {
		i, err := cast.ToIntE(v)
		if err != nil {
			return SliderConfig{}, errors.Wrap(err, "SLIDER_MAX_PIN")
		}
		cfg.Pins.MaxEndstopPin = i
	}
	if v, ok := os.LookupEnv("SLIDER_INVERT_ENDSTOPS"); ok {
		cfg.InvertEndstops = truthy(v)
	}

	if err := cfg.Validate(); err != nil {
		return SliderConfig{}, errors.Wrap(err, "invalid slider configuration")
	}
	return cfg, nil
}
