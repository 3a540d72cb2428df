package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Measure is an optional physical measurement (grams or centimetres).
// It decodes from a JSON number, a numeric string such as "12.50" (the
// catalog serialises decimals as strings) or null. Values that are not
// finite numbers decode as absent.
type Measure struct {
	value float64
	valid bool
}

// MeasureOf returns a present Measure.
func MeasureOf(v float64) Measure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Measure{}
	}
	return Measure{value: v, valid: true}
}

// Get returns the value and whether it is present.
func (m Measure) Get() (float64, bool) {
	return m.value, m.valid
}

// Valid reports whether the measure is present.
func (m Measure) Valid() bool {
	return m.valid
}

// Ptr returns nil for an absent measure.
func (m Measure) Ptr() *float64 {
	if !m.valid {
		return nil
	}
	v := m.value
	return &v
}

// Or returns m if present, otherwise other.
func (m Measure) Or(other Measure) Measure {
	if m.valid {
		return m
	}
	return other
}

func (m *Measure) UnmarshalJSON(b []byte) error {
	*m = Measure{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	*m = MeasureOf(v)
	return nil
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// Dimensions are the shipping attributes of one product: weight in grams,
// length/width/height in centimetres.
type Dimensions struct {
	Weight Measure `json:"weight"`
	Length Measure `json:"length"`
	Width  Measure `json:"width"`
	Height Measure `json:"height"`
}

// HasAny reports whether at least one attribute is present.
func (d Dimensions) HasAny() bool {
	return d.Weight.valid || d.Length.valid || d.Width.valid || d.Height.valid
}
