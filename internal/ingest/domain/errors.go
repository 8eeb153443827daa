package ingest

import "errors"

var (
	// ErrEmptyFile is returned when a source has no header line.
	ErrEmptyFile = errors.New("ingest: empty file")
	// ErrUnreadableHeader is returned when the header line cannot be parsed.
	ErrUnreadableHeader = errors.New("ingest: unreadable header")
	// ErrInvalidTimestamp is returned when a value does not parse as a timestamp.
	ErrInvalidTimestamp = errors.New("ingest: invalid timestamp")
	// ErrInvalidKWh is returned when a value does not parse as a finite number.
	ErrInvalidKWh = errors.New("ingest: invalid kwh")
	// ErrNegativeKWh is returned when negative readings are rejected.
	ErrNegativeKWh = errors.New("ingest: negative kwh")
	// ErrEmptyRules is returned when a canonical field has no candidate names.
	ErrEmptyRules = errors.New("ingest: empty column rules")
)
