// Package timex adds JSON support for durations used in config files.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration wraps time.Duration so it can be read from JSON either as a
// string ("3s", "1m30s") or as an integer number of nanoseconds.
type Duration struct {
	time.Duration
}

// MarshalJSON writes the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}
