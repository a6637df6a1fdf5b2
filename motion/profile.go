// Package motion holds the validated trajectory data model (Keyframe,
// Profile) and the planner that samples a Profile into a time-aligned
// position sequence.
package motion

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/BiologIC-Colin/CameraSlider/easing"
	"github.com/BiologIC-Colin/CameraSlider/slidererr"
)

// Keyframe is a (time, position) anchor. Ease describes the
// interpolation arriving at this keyframe from its predecessor.
type Keyframe struct {
	T     float64 // seconds, >= 0
	PosMM float64
	Ease  easing.Ease
}

type keyframeWire struct {
	T     float64         `json:"t"`
	PosMM float64         `json:"pos_mm"`
	Ease  json.RawMessage `json:"ease"`
}

// MarshalJSON implements json.Marshaler.
func (k Keyframe) MarshalJSON() ([]byte, error) {
	ease := k.Ease
	if ease == nil {
		ease = easing.Linear{}
	}
	easeJSON, err := marshalEase(ease)
	if err != nil {
		return nil, err
	}
	return json.Marshal(keyframeWire{T: k.T, PosMM: k.PosMM, Ease: easeJSON})
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *Keyframe) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var w keyframeWire
	if err := dec.Decode(&w); err != nil {
		return errors.Wrap(err, "decoding keyframe")
	}
	if w.T < 0 {
		return errors.Wrap(slidererr.ErrValidation, "keyframe t must be >= 0")
	}

	var ease easing.Ease
	if len(w.Ease) == 0 {
		ease = easing.Linear{}
	} else {
		var err error
		ease, err = unmarshalEase(w.Ease)
		if err != nil {
			return err
		}
	}

	k.T = w.T
	k.PosMM = w.PosMM
	k.Ease = ease
	return nil
}

// Profile is a validated trajectory: a set of keyframes plus the
// motion limits that bound how fast the controller may execute it.
// The zero value is not valid; construct with NewProfile or
// UnmarshalJSON, both of which enforce every invariant below.
type Profile struct {
	LengthMM        float64
	Keyframes       []Keyframe
	MaxSpeedMMPerS  float64
	MaxAccelMMPerS2 float64
}

type profileWire struct {
	LengthMM        float64    `json:"length_mm"`
	Keyframes       []Keyframe `json:"keyframes"`
	MaxSpeedMMPerS  float64    `json:"max_speed_mm_s"`
	MaxAccelMMPerS2 float64    `json:"max_accel_mm_s2"`
}

// NewProfile validates and constructs a Profile. Keyframes are stable
// sorted by T before the strictly-increasing check, matching the
// "after stable sort by t" wording of the keyframe-ordering invariant.
// A keyframe with a nil Ease is stored with easing.Linear{}, the same
// value its JSON form decodes to.
func NewProfile(lengthMM float64, keyframes []Keyframe, maxSpeedMMPerS, maxAccelMMPerS2 float64) (*Profile, error) {
	if lengthMM <= 0 {
		return nil, errors.Wrap(slidererr.ErrValidation, "length_mm must be > 0")
	}
	if maxSpeedMMPerS <= 0 {
		return nil, errors.Wrap(slidererr.ErrValidation, "max_speed_mm_s must be > 0")
	}
	if maxAccelMMPerS2 <= 0 {
		return nil, errors.Wrap(slidererr.ErrValidation, "max_accel_mm_s2 must be > 0")
	}
	if len(keyframes) < 2 {
		return nil, errors.Wrap(slidererr.ErrValidation, "at least two keyframes required")
	}

	sorted := make([]Keyframe, len(keyframes))
	copy(sorted, keyframes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].T < sorted[j].T })

	lastT := -1.0
	for i, kf := range sorted {
		if kf.Ease == nil {
			sorted[i].Ease = easing.Linear{}
		}
		if kf.T < 0 {
			return nil, errors.Wrap(slidererr.ErrValidation, "keyframe t must be >= 0")
		}
		if kf.T <= lastT {
			return nil, errors.Wrap(slidererr.ErrValidation, "keyframe times must be strictly increasing")
		}
		if kf.PosMM < 0 || kf.PosMM > lengthMM {
			return nil, errors.Wrapf(slidererr.ErrValidation, "keyframe position %.3f outside [0, %.3f]", kf.PosMM, lengthMM)
		}
		lastT = kf.T
	}

	return &Profile{
		LengthMM:        lengthMM,
		Keyframes:       sorted,
		MaxSpeedMMPerS:  maxSpeedMMPerS,
		MaxAccelMMPerS2: maxAccelMMPerS2,
	}, nil
}

// MarshalJSON implements json.Marshaler.
func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(profileWire{
		LengthMM:        p.LengthMM,
		Keyframes:       p.Keyframes,
		MaxSpeedMMPerS:  p.MaxSpeedMMPerS,
		MaxAccelMMPerS2: p.MaxAccelMMPerS2,
	})
}

// UnmarshalJSON implements json.Unmarshaler, rejecting unknown fields
// and re-running every NewProfile invariant.
func (p *Profile) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var w profileWire
	if err := dec.Decode(&w); err != nil {
		return errors.Wrap(err, "decoding profile")
	}

	valid, err := NewProfile(w.LengthMM, w.Keyframes, w.MaxSpeedMMPerS, w.MaxAccelMMPerS2)
	if err != nil {
		return err
	}
	*p = *valid
	return nil
}
