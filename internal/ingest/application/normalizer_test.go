package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ingest "campus-energy/internal/ingest/domain"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	normalizer, err := NewNormalizer(ingest.DefaultColumnRules())
	require.NoError(t, err)
	return normalizer
}

func TestNormalizeAlwaysYieldsCanonicalColumns(t *testing.T) {
	normalizer := newTestNormalizer(t)

	cases := []struct {
		name      string
		columns   []string
		rows      [][]string
		want      []string
		fallbacks []string
	}{
		{
			name:    "all matched",
			columns: []string{"\ufeffTimestamp ", "Energy", "Facility"},
			rows:    [][]string{{"2024-01-01", "1", "Lib"}},
			want:    []string{"timestamp", "kwh", "building"},
		},
		{
			name:      "building from filename",
			columns:   []string{"Date", "Usage"},
			rows:      [][]string{{"2024-01-01", "1"}},
			want:      []string{"timestamp", "kwh", "building"},
			fallbacks: []string{FallbackBuildingFilename},
		},
		{
			name:      "positional fallbacks",
			columns:   []string{"foo", "bar", "baz"},
			rows:      [][]string{{"2024-01-01", "1", "x"}},
			want:      []string{"timestamp", "kwh", "baz", "building"},
			fallbacks: []string{FallbackTimestampPosition, FallbackKWhPosition, FallbackBuildingFilename},
		},
		{
			name:      "single column gets zero kwh",
			columns:   []string{"reading_at"},
			rows:      [][]string{{"2024-01-01"}},
			want:      []string{"timestamp", "kwh", "building"},
			fallbacks: []string{FallbackTimestampPosition, FallbackKWhZero, FallbackBuildingFilename},
		},
		{
			name:      "no columns",
			want:      []string{"timestamp", "kwh", "building"},
			fallbacks: []string{FallbackTimestampPosition, FallbackKWhZero, FallbackBuildingFilename},
		},
		{
			name:      "timestamp matched in second column",
			columns:   []string{"Block", "Date"},
			rows:      [][]string{{"Lib", "2024-01-01"}},
			want:      []string{"building", "timestamp", "kwh"},
			fallbacks: []string{FallbackKWhZero},
		},
		{
			name:      "kwh takes next free column",
			columns:   []string{"Facility", "Time", "Reading"},
			rows:      [][]string{{"Lib", "2024-01-01", "4"}},
			want:      []string{"building", "timestamp", "kwh"},
			fallbacks: []string{FallbackKWhPosition},
		},
		{
			name:      "timestamp skips claimed first column",
			columns:   []string{"Usage", "When"},
			rows:      [][]string{{"4", "2024-01-01"}},
			want:      []string{"kwh", "timestamp", "building"},
			fallbacks: []string{FallbackTimestampPosition, FallbackBuildingFilename},
		},
		{
			name:      "first candidate wins",
			columns:   []string{"time", "date", "kwh"},
			rows:      [][]string{{"2024-01-01 00:00", "2024-01-02", "4"}},
			want:      []string{"timestamp", "date", "kwh", "building"},
			fallbacks: []string{FallbackBuildingFilename},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := ingest.RawTable{Source: "data/A_jan.csv", Columns: tc.columns, Rows: tc.rows}
			out, fallbacks := normalizer.Normalize(table)

			assert.Equal(t, tc.want, out.Columns)
			assert.Equal(t, tc.fallbacks, fallbacks)
			for _, col := range []string{ingest.ColumnTimestamp, ingest.ColumnKWh, ingest.ColumnBuilding} {
				assert.True(t, out.Has(col), "missing %s", col)
			}
			for _, row := range out.Rows {
				assert.LessOrEqual(t, len(row), len(out.Columns))
			}
		})
	}
}

func TestNormalizeFillsConstantColumns(t *testing.T) {
	normalizer := newTestNormalizer(t)
	table := ingest.RawTable{
		Source:  "/srv/meters/Hall_2024_q1.csv",
		Columns: []string{"when"},
		Rows:    [][]string{{"2024-01-01"}, {}},
	}

	out, _ := normalizer.Normalize(table)

	kwhIdx := out.Index(ingest.ColumnKWh)
	buildingIdx := out.Index(ingest.ColumnBuilding)
	for _, row := range out.Rows {
		assert.Equal(t, "0", out.Value(row, kwhIdx))
		assert.Equal(t, "Hall", out.Value(row, buildingIdx))
	}
	assert.Equal(t, []string{"when"}, table.Columns, "input table must not be mutated")
	assert.Equal(t, []string{"2024-01-01"}, table.Rows[0])
}

func TestNormalizeUsesConfiguredRules(t *testing.T) {
	normalizer, err := NewNormalizer(ingest.ColumnRules{
		Building:  []string{"site"},
		Timestamp: []string{"read_at"},
		KWh:       []string{"consumption"},
	})
	require.NoError(t, err)

	out, fallbacks := normalizer.Normalize(ingest.RawTable{
		Source:  "x.csv",
		Columns: []string{"Consumption", "SITE", "Read_At"},
	})

	assert.Equal(t, []string{"kwh", "building", "timestamp"}, out.Columns)
	assert.Empty(t, fallbacks)
}

func TestNewNormalizerRejectsEmptyRules(t *testing.T) {
	_, err := NewNormalizer(ingest.ColumnRules{Timestamp: []string{"ts"}})
	require.ErrorIs(t, err, ingest.ErrEmptyRules)
}

func TestBuildingFromFilename(t *testing.T) {
	cases := map[string]string{
		"A_jan.csv":               "A",
		"data/Library.csv":        "Library",
		"/srv/Hall_2024_q1.csv":   "Hall",
		"_orphan.csv":             "_orphan",
		"Science Block_march.csv": "Science Block",
		"noext":                   "noext",
		".csv":                    UnknownBuilding,
		"data/ .csv":              UnknownBuilding,
	}
	for path, want := range cases {
		assert.Equal(t, want, BuildingFromFilename(path), path)
	}
}
