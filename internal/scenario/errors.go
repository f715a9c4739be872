package scenario

import "errors"

var (
	// ErrInvalidBaseline is returned when a baseline energy is not positive
	ErrInvalidBaseline = errors.New("invalid baseline: energy must be positive")

	// ErrMissingFocusEntity is returned when the selected building does not exist.
	// The accompanying focus is the campus.
	ErrMissingFocusEntity = errors.New("focus building not found")

	// ErrMalformedMonthlyRecord marks a monthly record without a usable energy value
	ErrMalformedMonthlyRecord = errors.New("malformed monthly record")
)
