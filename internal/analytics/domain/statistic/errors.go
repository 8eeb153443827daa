package statistic

import "errors"

var (
	// ErrEmptyBuilding is returned when a block has no building name.
	ErrEmptyBuilding = errors.New("statistic: empty building")
	// ErrInvalidGranularity is returned when granularity is unsupported.
	ErrInvalidGranularity = errors.New("statistic: invalid granularity")
	// ErrInvalidPeriodStart is returned when the period start is zero.
	ErrInvalidPeriodStart = errors.New("statistic: invalid period start")
	// ErrInvalidReading is returned when a reading has a zero time or a non-finite value.
	ErrInvalidReading = errors.New("statistic: invalid reading")
	// ErrInvalidWeekday is returned when a week start cannot be parsed.
	ErrInvalidWeekday = errors.New("statistic: invalid weekday")
)
