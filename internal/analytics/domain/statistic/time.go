package statistic

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the bucket width of an aggregate.
type Granularity string

const (
	GranularityDay  Granularity = "DAY"
	GranularityWeek Granularity = "WEEK"
)

// IsValid checks if the granularity is one of the supported values.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDay, GranularityWeek:
		return true
	default:
		return false
	}
}

// TimeKey is the persisted representation of a bucket boundary.
type TimeKey string

// String returns the raw string for storage.
func (k TimeKey) String() string { return string(k) }

// NewTimeKey builds a TimeKey for the bucket starting at periodStart.
// Day keys look like 20240101; week keys use the ISO week of the start day.
func NewTimeKey(granularity Granularity, periodStart time.Time) (TimeKey, error) {
	if periodStart.IsZero() {
		return "", ErrInvalidPeriodStart
	}
	switch granularity {
	case GranularityDay:
		return TimeKey(periodStart.Format("20060102")), nil
	case GranularityWeek:
		year, week := periodStart.ISOWeek()
		return TimeKey(fmt.Sprintf("%04d-W%02d", year, week)), nil
	default:
		return "", ErrInvalidGranularity
	}
}

// BucketStart returns the start of the calendar bucket containing t.
// Weeks begin at 00:00 on weekStart.
func BucketStart(granularity Granularity, t time.Time, weekStart time.Weekday) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, ErrInvalidPeriodStart
	}
	day := truncateToDay(t)
	switch granularity {
	case GranularityDay:
		return day, nil
	case GranularityWeek:
		offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
		return day.AddDate(0, 0, -offset), nil
	default:
		return time.Time{}, ErrInvalidGranularity
	}
}

// ParseWeekday parses a weekday name such as "monday" or "Sun".
func ParseWeekday(value string) (time.Weekday, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return time.Monday, nil
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToLower(day.String())
		if value == name || value == name[:3] {
			return day, nil
		}
	}
	return time.Monday, fmt.Errorf("%w: %q", ErrInvalidWeekday, value)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
