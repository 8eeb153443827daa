package application

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	ingest "campus-energy/internal/ingest/domain"
)

// DefaultTimestampLayouts are tried in order; the first that parses wins.
// Values carrying a UTC offset keep their wall clock and drop the zone.
var DefaultTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-Jan-2006 15:04:05",
	"02-Jan-2006",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
}

// Coercer converts raw cell text into typed canonical values.
type Coercer struct {
	layouts        []string
	rejectNegative bool
}

// NewCoercer builds a coercer; empty layouts fall back to the defaults.
func NewCoercer(layouts []string, rejectNegative bool) Coercer {
	if len(layouts) == 0 {
		layouts = DefaultTimestampLayouts
	}
	return Coercer{layouts: layouts, rejectNegative: rejectNegative}
}

// Timestamp parses a naive wall-clock timestamp.
func (c Coercer) Timestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ingest.ErrInvalidTimestamp
	}
	for _, layout := range c.layouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		naive := time.Date(parsed.Year(), parsed.Month(), parsed.Day(),
			parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(), time.UTC)
		if naive.IsZero() {
			break
		}
		return naive, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ingest.ErrInvalidTimestamp, value)
}

// KWh parses a finite energy value.
func (c Coercer) KWh(value string) (float64, error) {
	value = strings.TrimSpace(value)
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("%w: %q", ingest.ErrInvalidKWh, value)
	}
	if c.rejectNegative && parsed < 0 {
		return 0, fmt.Errorf("%w: %q", ingest.ErrNegativeKWh, value)
	}
	return parsed, nil
}
