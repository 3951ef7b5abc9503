package settingsservice

import "errors"

var (
	// ErrInvalidValue is returned when a bonus value or target is not a positive number.
	ErrInvalidValue = errors.New("values must be positive numbers")
)
