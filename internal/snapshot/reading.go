package snapshot

import (
	"encoding/json"
	"math"
	"strconv"
)

// Reading is an optional metric value. The zero Reading is absent; a
// present Reading always holds a finite number.
type Reading struct {
	v  float64
	ok bool
}

// Of returns a present reading, or an absent one when v is NaN or
// infinite.
func Of(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	return Reading{v: v, ok: true}
}

// Maybe is Of for a value that may already be missing.
func Maybe(v float64, ok bool) Reading {
	if !ok {
		return Reading{}
	}
	return Of(v)
}

// Get returns the value and whether it is present.
func (r Reading) Get() (float64, bool) { return r.v, r.ok }

// Valid reports whether the reading is present.
func (r Reading) Valid() bool { return r.ok }

// Or returns the value, or def when absent.
func (r Reading) Or(def float64) float64 {
	if !r.ok {
		return def
	}
	return r.v
}

// MarshalJSON encodes an absent reading as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, r.v, 'f', -1, 64), nil
}

// UnmarshalJSON accepts a number or null.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*r = Reading{}
		return nil
	}
	*r = Of(*v)
	return nil
}

func (r Reading) String() string {
	if !r.ok {
		return "absent"
	}
	return strconv.FormatFloat(r.v, 'f', -1, 64)
}
