package ingest

import (
	"sort"
	"time"
)

// FileStatus is the outcome of loading one source file.
type FileStatus string

const (
	FileStatusLoaded     FileStatus = "loaded"
	FileStatusEmpty      FileStatus = "empty"
	FileStatusUnreadable FileStatus = "unreadable"
)

// DropReason classifies why a row was excluded during coercion.
type DropReason string

const (
	DropInvalidTimestamp DropReason = "invalid_timestamp"
	DropInvalidKWh       DropReason = "invalid_kwh"
	DropNegativeKWh      DropReason = "negative_kwh"
)

// LoadReport is the per-file observability record returned by the loader.
type LoadReport struct {
	Source        string
	Status        FileStatus
	Err           error
	Columns       []string
	Malformed     int
	RowsRead      int
	RowsKept      int
	Drops         map[DropReason]int
	FallbackUsed  []string
	Rows          []CanonicalRow
	LoadStartedAt time.Time
	Duration      time.Duration
}

// Dropped returns the number of rows excluded by coercion.
func (r LoadReport) Dropped() int { return r.RowsRead - r.RowsKept }

// Failed tells whether the file contributed nothing.
func (r LoadReport) Failed() bool { return r.Status != FileStatusLoaded }

// ErrorString returns the load error text or "".
func (r LoadReport) ErrorString() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// DropTotals sums drop reasons across reports.
func DropTotals(reports []LoadReport) map[DropReason]int {
	totals := make(map[DropReason]int)
	for _, report := range reports {
		for reason, count := range report.Drops {
			totals[reason] += count
		}
	}
	return totals
}

// SortedReasons returns drop reasons in a stable order.
func SortedReasons(drops map[DropReason]int) []DropReason {
	reasons := make([]DropReason, 0, len(drops))
	for reason := range drops {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}
