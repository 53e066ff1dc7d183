package models

import "errors"

var (
	// ErrInvalidTimeFormat is returned when a time string does not match TimeLayout
	ErrInvalidTimeFormat = errors.New("invalid time format, expected YYYY-MM-DD HH:MM")
	// ErrInvalidOutcome is returned for outcomes other than completed, failed or skipped
	ErrInvalidOutcome = errors.New("invalid outcome")
)
