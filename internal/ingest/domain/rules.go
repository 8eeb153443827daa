package ingest

import "strings"

// ColumnRules maps each canonical field to the header names that identify it.
// Matching is case-insensitive; the first column in file order wins.
type ColumnRules struct {
	Building  []string `yaml:"building"`
	Timestamp []string `yaml:"timestamp"`
	KWh       []string `yaml:"kwh"`
}

// DefaultColumnRules returns the built-in candidate names.
func DefaultColumnRules() ColumnRules {
	return ColumnRules{
		Building:  []string{"building", "block", "facility"},
		Timestamp: []string{"timestamp", "time", "datetime", "date"},
		KWh:       []string{"kwh", "energy", "usage", "meter"},
	}
}

// Validate ensures every field has at least one candidate.
func (r ColumnRules) Validate() error {
	if len(r.Building) == 0 || len(r.Timestamp) == 0 || len(r.KWh) == 0 {
		return ErrEmptyRules
	}
	return nil
}

// CandidateSet is a lowercased lookup of header names.
type CandidateSet map[string]struct{}

// NewCandidateSet lowercases and trims names into a set.
func NewCandidateSet(names []string) CandidateSet {
	set := make(CandidateSet, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// Contains matches a header name case-insensitively.
func (s CandidateSet) Contains(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}
