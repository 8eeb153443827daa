package ingest

// Canonical column names every normalized table carries.
const (
	ColumnBuilding  = "building"
	ColumnTimestamp = "timestamp"
	ColumnKWh       = "kwh"
)

// RawTable is an untyped table read from one source file.
// Malformed counts lines the reader skipped before the table was built.
type RawTable struct {
	Source    string
	Columns   []string
	Rows      [][]string
	Malformed int
}

// Index returns the position of the first column named name, or -1.
func (t RawTable) Index(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Has tells whether a column named name exists.
func (t RawTable) Has(name string) bool { return t.Index(name) >= 0 }

// Value returns the cell at row/column or "" when the row is short.
func (t RawTable) Value(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
