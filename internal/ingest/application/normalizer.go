package application

import (
	"path/filepath"
	"strings"

	ingest "campus-energy/internal/ingest/domain"
)

// Fallback names which heuristic filled a canonical column.
const (
	FallbackTimestampPosition = "timestamp:positional"
	FallbackKWhPosition       = "kwh:positional"
	FallbackKWhZero           = "kwh:zero_fill"
	FallbackBuildingFilename  = "building:filename"
)

// Normalizer maps arbitrary headers onto the canonical schema.
type Normalizer struct {
	timestamp ingest.CandidateSet
	kwh       ingest.CandidateSet
	building  ingest.CandidateSet
}

// NewNormalizer builds a normalizer from a rule table.
func NewNormalizer(rules ingest.ColumnRules) (*Normalizer, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{
		timestamp: ingest.NewCandidateSet(rules.Timestamp),
		kwh:       ingest.NewCandidateSet(rules.KWh),
		building:  ingest.NewCandidateSet(rules.Building),
	}, nil
}

// Normalize returns a copy of table that always carries the building,
// timestamp and kwh columns, plus the fallbacks that were applied.
func (n *Normalizer) Normalize(table ingest.RawTable) (ingest.RawTable, []string) {
	out := ingest.RawTable{
		Source:    table.Source,
		Columns:   make([]string, len(table.Columns)),
		Rows:      table.Rows,
		Malformed: table.Malformed,
	}
	for i, col := range table.Columns {
		out.Columns[i] = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
	}

	claimed := make(map[int]bool, 3)
	rename := func(set ingest.CandidateSet, canonical string) {
		for i, col := range out.Columns {
			if claimed[i] || !set.Contains(col) {
				continue
			}
			claimed[i] = true
			out.Columns[i] = canonical
			return
		}
	}
	rename(n.timestamp, ingest.ColumnTimestamp)
	rename(n.kwh, ingest.ColumnKWh)
	rename(n.building, ingest.ColumnBuilding)

	// claim renames the preferred column, or the first unclaimed one when
	// preferred already holds a canonical field.
	claim := func(preferred int, canonical string) bool {
		idx := -1
		if preferred < len(out.Columns) && !claimed[preferred] {
			idx = preferred
		} else {
			for i := range out.Columns {
				if !claimed[i] {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			return false
		}
		claimed[idx] = true
		out.Columns[idx] = canonical
		return true
	}

	var fallbacks []string
	if !out.Has(ingest.ColumnTimestamp) {
		if !claim(0, ingest.ColumnTimestamp) {
			out = appendConstant(out, ingest.ColumnTimestamp, "")
		}
		fallbacks = append(fallbacks, FallbackTimestampPosition)
	}
	if !out.Has(ingest.ColumnKWh) {
		if len(out.Columns) > 1 && claim(1, ingest.ColumnKWh) {
			fallbacks = append(fallbacks, FallbackKWhPosition)
		} else {
			out = appendConstant(out, ingest.ColumnKWh, "0")
			fallbacks = append(fallbacks, FallbackKWhZero)
		}
	}
	if !out.Has(ingest.ColumnBuilding) {
		out = appendConstant(out, ingest.ColumnBuilding, BuildingFromFilename(table.Source))
		fallbacks = append(fallbacks, FallbackBuildingFilename)
	}
	return out, fallbacks
}

// UnknownBuilding labels rows whose file name yields no building.
const UnknownBuilding = "unknown"

// BuildingFromFilename returns the file stem up to the first underscore.
// It never returns an empty name.
func BuildingFromFilename(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if prefix, _, found := strings.Cut(stem, "_"); found && strings.TrimSpace(prefix) != "" {
		return strings.TrimSpace(prefix)
	}
	if stem == "" {
		return UnknownBuilding
	}
	return stem
}

func appendConstant(table ingest.RawTable, column, value string) ingest.RawTable {
	width := len(table.Columns)
	table.Columns = append(table.Columns[:width:width], column)
	rows := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		padded := make([]string, width, width+1)
		copy(padded, row)
		rows[i] = append(padded, value)
	}
	table.Rows = rows
	return table
}
