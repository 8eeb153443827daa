package ingest

import (
	"math"
	"time"
)

// CanonicalRow is a fully coerced meter reading.
type CanonicalRow struct {
	Building  string
	Timestamp time.Time
	KWh       float64
}

// Valid reports whether the row satisfies the corpus invariants.
func (r CanonicalRow) Valid() bool {
	if r.Timestamp.IsZero() {
		return false
	}
	return !math.IsNaN(r.KWh) && !math.IsInf(r.KWh, 0)
}

// Corpus is the merged, timestamp-ordered set of canonical rows.
// It is read-only once built.
type Corpus struct {
	rows []CanonicalRow
}

// NewCorpus wraps rows that are already sorted.
func NewCorpus(rows []CanonicalRow) Corpus {
	return Corpus{rows: rows}
}

// Rows returns a copy of the corpus rows.
func (c Corpus) Rows() []CanonicalRow {
	out := make([]CanonicalRow, len(c.rows))
	copy(out, c.rows)
	return out
}

// Each calls fn for every row in order without copying.
func (c Corpus) Each(fn func(i int, row CanonicalRow)) {
	for i, row := range c.rows {
		fn(i, row)
	}
}

// Len returns the number of rows.
func (c Corpus) Len() int { return len(c.rows) }

// Empty tells whether no file contributed any row.
func (c Corpus) Empty() bool { return len(c.rows) == 0 }
