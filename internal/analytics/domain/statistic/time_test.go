package statistic

import (
	"errors"
	"testing"
	"time"
)

func TestBucketStartWeekConvention(t *testing.T) {
	sunday := time.Date(2024, 1, 7, 23, 30, 0, 0, time.UTC)

	monday, err := BucketStart(GranularityWeek, sunday, time.Monday)
	if err != nil {
		t.Fatalf("bucket start: %v", err)
	}
	if !monday.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected week of 2024-01-01, got %s", monday)
	}

	sundayStart, _ := BucketStart(GranularityWeek, sunday, time.Sunday)
	if !sundayStart.Equal(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected week of 2024-01-07, got %s", sundayStart)
	}

	day, _ := BucketStart(GranularityDay, sunday, time.Monday)
	if !day.Equal(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day start %s", day)
	}

	if _, err := BucketStart("MONTH", sunday, time.Monday); !errors.Is(err, ErrInvalidGranularity) {
		t.Fatalf("expected ErrInvalidGranularity, got %v", err)
	}
	if _, err := BucketStart(GranularityDay, time.Time{}, time.Monday); !errors.Is(err, ErrInvalidPeriodStart) {
		t.Fatalf("expected ErrInvalidPeriodStart, got %v", err)
	}
}

func TestNewTimeKey(t *testing.T) {
	start := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)

	day, err := NewTimeKey(GranularityDay, start)
	if err != nil || day != "20241230" {
		t.Fatalf("unexpected day key %q err=%v", day, err)
	}
	week, err := NewTimeKey(GranularityWeek, start)
	if err != nil || week.String() != "2025-W01" {
		t.Fatalf("unexpected week key %q err=%v", week, err)
	}
	if _, err := NewTimeKey(GranularityDay, time.Time{}); !errors.Is(err, ErrInvalidPeriodStart) {
		t.Fatalf("expected ErrInvalidPeriodStart, got %v", err)
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]time.Weekday{
		"":           time.Monday,
		"monday":     time.Monday,
		"Sun":        time.Sunday,
		" SATURDAY ": time.Saturday,
	}
	for in, want := range cases {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %s, got %s err=%v", in, want, got, err)
		}
	}
	if _, err := ParseWeekday("someday"); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
}
