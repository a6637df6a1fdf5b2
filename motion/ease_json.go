package motion

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/BiologIC-Colin/CameraSlider/easing"
	"github.com/BiologIC-Colin/CameraSlider/slidererr"
)

// easeWire is the JSON wire shape of an Ease: a discriminated union
// keyed by "type", with "p" present only for "cubic-bezier".
type easeWire struct {
	Type string    `json:"type"`
	P    []float64 `json:"p,omitempty"`
}

func marshalEase(e easing.Ease) (json.RawMessage, error) {
	switch v := e.(type) {
	case nil, easing.Linear:
		return json.Marshal(easeWire{Type: "linear"})
	case easing.CubicBezier:
		return json.Marshal(easeWire{
			Type: "cubic-bezier",
			P:    []float64{v.X1, v.Y1, v.X2, v.Y2},
		})
	default:
		return nil, errors.Errorf("unsupported ease implementation %T", e)
	}
}

func unmarshalEase(data []byte) (easing.Ease, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var w easeWire
	if err := dec.Decode(&w); err != nil {
		return nil, errors.Wrap(err, "decoding ease")
	}

	switch w.Type {
	case "", "linear":
		return easing.Linear{}, nil
	case "cubic-bezier":
		if len(w.P) != 4 {
			return nil, errors.Wrap(slidererr.ErrValidation, "cubic-bezier requires p=[x1,y1,x2,y2]")
		}
		return easing.CubicBezier{X1: w.P[0], Y1: w.P[1], X2: w.P[2], Y2: w.P[3]}, nil
	default:
		return nil, errors.Wrapf(slidererr.ErrValidation, "unknown ease type %q", w.Type)
	}
}
