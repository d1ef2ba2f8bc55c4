// file: internal/models/measure.go
// version: 1.0.0
// guid: 25e402b7-5edb-46ae-a15c-2fa13950bed8

package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Placeholder is rendered in place of unknown readings.
const Placeholder = "—"

// Measure is a numeric reading where NaN means "unknown".
// NaN marshals as JSON null; null, missing or non-numeric input decodes as NaN.
type Measure float64

// Unknown returns the NaN sentinel.
func Unknown() Measure { return Measure(math.NaN()) }

// Known reports whether the reading holds a real value.
func (m Measure) Known() bool {
	f := float64(m)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// String formats the reading rounded to an integer, or the placeholder glyph.
func (m Measure) String() string {
	if !m.Known() {
		return Placeholder
	}
	return strconv.FormatFloat(math.Round(float64(m)), 'f', 0, 64)
}

// MarshalJSON implements json.Marshaler.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(m))
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = Unknown()
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*m = Unknown()
			return nil
		}
		*m = parseMeasure(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*m = Unknown()
		return nil
	}
	*m = Measure(f)
	return nil
}

func parseMeasure(s string) Measure {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Unknown()
	}
	return Measure(f)
}
