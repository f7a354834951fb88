// Package common defines shared constants and sentinel errors used across
// client layers of mdash. Callers should use errors.Is to match these values.
package common

import "errors"

// ErrorValidation is matched by errors raised before any network call
// because user input was rejected locally.
var ErrorValidation = errors.New("validation error")
