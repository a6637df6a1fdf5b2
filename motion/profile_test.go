package motion

import (
	"encoding/json"

	"testing"

	"go.viam.com/test"

	"github.com/BiologIC-Colin/CameraSlider/easing"
)

func TestNewProfileRejectsTooFewKeyframes(t *testing.T) {
	_, err := NewProfile(1000, []Keyframe{{T: 0, PosMM: 0}}, 120, 300)
	test.That(t, err, test.ShouldNotBeNil)
}

// Keyframe times must be strictly increasing after sorting — two
// keyframes sharing the same t must be rejected.
func TestNewProfileRejectsNonStrictlyIncreasingTimes(t *testing.T) {
	_, err := NewProfile(1000, []Keyframe{
		{T: 0, PosMM: 0},
		{T: 1, PosMM: 50},
		{T: 1, PosMM: 100},
	}, 120, 300)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewProfileSortsByTime(t *testing.T) {
	p, err := NewProfile(1000, []Keyframe{
		{T: 2, PosMM: 100},
		{T: 0, PosMM: 0},
	}, 120, 300)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Keyframes[0].T, test.ShouldEqual, 0.0)
	test.That(t, p.Keyframes[1].T, test.ShouldEqual, 2.0)
}

func TestNewProfileRejectsPositionOutsideLength(t *testing.T) {
	_, err := NewProfile(100, []Keyframe{
		{T: 0, PosMM: 0},
		{T: 1, PosMM: 150},
	}, 120, 300)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewProfileRejectsBadLimits(t *testing.T) {
	kfs := []Keyframe{{T: 0, PosMM: 0}, {T: 1, PosMM: 10}}
	_, err := NewProfile(100, kfs, 0, 300)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewProfile(100, kfs, 120, 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewProfile(0, kfs, 120, 300)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProfileJSONRoundTrip(t *testing.T) {
	p, err := NewProfile(1000, []Keyframe{
		{T: 2, PosMM: 100, Ease: easing.Linear{}},
		{T: 0, PosMM: 0},
		{T: 1, PosMM: 50, Ease: easing.CubicBezier{X1: 0.42, Y1: 0, X2: 0.58, Y2: 1}},
	}, 120, 300)
	test.That(t, err, test.ShouldBeNil)

	data, err := json.Marshal(p)
	test.That(t, err, test.ShouldBeNil)

	var round Profile
	test.That(t, json.Unmarshal(data, &round), test.ShouldBeNil)
	test.That(t, round, test.ShouldResemble, *p)
}

func TestProfileJSONRejectsUnknownFields(t *testing.T) {
	raw := []byte(`{
		"length_mm": 1000,
		"keyframes": [{"t":0,"pos_mm":0,"ease":{"type":"linear"}},{"t":1,"pos_mm":10,"ease":{"type":"linear"}}],
		"max_speed_mm_s": 120,
		"max_accel_mm_s2": 300,
		"bogus_field": true
	}`)
	var p Profile
	err := json.Unmarshal(raw, &p)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProfileJSONRejectsMalformedBezier(t *testing.T) {
	raw := []byte(`{
		"length_mm": 1000,
		"keyframes": [
			{"t":0,"pos_mm":0,"ease":{"type":"linear"}},
			{"t":1,"pos_mm":10,"ease":{"type":"cubic-bezier","p":[0.1,0.2]}}
		],
		"max_speed_mm_s": 120,
		"max_accel_mm_s2": 300
	}`)
	var p Profile
	err := json.Unmarshal(raw, &p)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestKeyframeDefaultEaseIsLinear(t *testing.T) {
	raw := []byte(`{"t":0,"pos_mm":0}`)
	var kf Keyframe
	test.That(t, json.Unmarshal(raw, &kf), test.ShouldBeNil)
	test.That(t, kf.Ease, test.ShouldResemble, easing.Linear{})
}
