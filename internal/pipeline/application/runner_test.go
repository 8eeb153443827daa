package application

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analytics "campus-energy/internal/analytics/application"
	"campus-energy/internal/analytics/infrastructure/memory"
	"campus-energy/internal/config"
	ingest "campus-energy/internal/ingest/domain"
	"campus-energy/internal/observability/metrics"
	reports "campus-energy/internal/report/interfaces"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type failingSink struct{}

func (failingSink) SaveTables(context.Context, analytics.Tables) error {
	return errors.New("sink down")
}

func testConfig(t *testing.T, files map[string]string) config.Config {
	t.Helper()
	root := t.TempDir()
	input := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(input, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(input, name), []byte(content), 0o644))
	}
	cfg := config.Default()
	cfg.InputDir = input
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.MetricsTextfile = filepath.Join(root, "energy.prom")
	cfg.Exports = config.Exports{}
	return cfg
}

func newTestRunner(t *testing.T, cfg config.Config, opts ...Option) *Runner {
	t.Helper()
	base := []Option{
		WithClock(fixedClock{now: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}),
		WithRunIDs(func() string { return "run-test" }),
	}
	runner, err := NewRunner(cfg, append(base, opts...)...)
	require.NoError(t, err)
	return runner
}

func TestRunMergesFilesOfOneBuilding(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"Lib_jan.csv": "timestamp,kwh,building\n2024-01-01 00:00,3,Lib\n2024-01-01 01:00,5,Lib\n",
		"Lib_feb.csv": "Time,Energy\n2024-01-02 00:00,7\nbroken,9\n",
	})
	sink := memory.NewStatisticRepository()
	m := metrics.New()
	var logs bytes.Buffer

	result, err := newTestRunner(t, cfg,
		WithSink(sink),
		WithMetrics(m),
		WithLogger(log.New(&logs, "", 0)),
	).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, "run-test", result.RunID)
	require.Len(t, result.Tables.Summary, 1)
	lib := result.Tables.Summary[0]
	assert.Equal(t, "Lib", lib.Building)
	assert.Equal(t, 15.0, lib.Total)
	assert.Equal(t, 5.0, lib.Mean)
	assert.Equal(t, 3.0, lib.Min)
	assert.Equal(t, 7.0, lib.Max)
	assert.Empty(t, result.FailedFiles())

	stored, ok := sink.Summary("Lib")
	require.True(t, ok)
	assert.Equal(t, 15.0, stored.Total)

	for _, name := range result.Artifacts {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, err, name)
	}
	assert.Contains(t, result.Artifacts, reports.DailyUsageFile)
	assert.NotContains(t, result.Artifacts, reports.ArchiveFile)

	assert.Contains(t, logs.String(), "event=rows_dropped run_id=run-test reason=invalid_timestamp count=1")
	assert.Contains(t, logs.String(), "event=run_completed run_id=run-test")
	textfile, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(textfile), `energy_pipeline_runs_total{result="success"} 1`)
	assert.Contains(t, string(textfile), `energy_pipeline_files_total{status="loaded"} 2`)
}

func TestRunAggregatesEveryCorpusRow(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		".csv":    "Date,Usage\n2024-01-01,10\n",
		"B_x.csv": "Block,Date\nGym,2024-01-02\n",
		"Lab.csv": "Facility,Time,Reading\nLab,2024-01-03 08:00,2.5\n",
	})

	result, err := newTestRunner(t, cfg).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, StatusCompleted, result.Status)
	assert.Empty(t, result.Tables.Failures)
	counted := 0
	for _, summary := range result.Tables.Summary {
		counted += summary.Count
	}
	assert.Equal(t, result.Corpus.Len(), counted)
	assert.Equal(t, 3, counted)
}

func TestRunHaltsWhenOnlyFileIsEmpty(t *testing.T) {
	cfg := testConfig(t, map[string]string{"Empty.csv": ""})
	var logs bytes.Buffer

	result, err := newTestRunner(t, cfg, WithLogger(log.New(&logs, "", 0))).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusNoData, result.Status)
	assert.Equal(t, "no valid data found", result.Reason)
	require.Len(t, result.Files, 1)
	assert.Equal(t, ingest.FileStatusUnreadable, result.Files[0].Status)
	assert.Empty(t, result.Artifacts)
	_, statErr := os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(statErr), "no reports are written on a no-data halt")
	assert.True(t, strings.Contains(logs.String(), "event=run_halted"))
}

func TestRunHaltsOnMissingInputDir(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.InputDir = filepath.Join(cfg.InputDir, "missing")

	result, err := newTestRunner(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoData, result.Status)
}

func TestRunHaltsWithoutMatchingFiles(t *testing.T) {
	cfg := testConfig(t, map[string]string{"notes.txt": "hello"})

	result, err := newTestRunner(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoData, result.Status)
	assert.Contains(t, result.Reason, "*.csv")
}

func TestRunReportsSinkFailure(t *testing.T) {
	cfg := testConfig(t, map[string]string{"A_jan.csv": "Date,Usage\n2024-01-01 00:00,10\n2024-01-01 01:00,15\n"})

	result, err := newTestRunner(t, cfg, WithSink(failingSink{})).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save aggregates")
	assert.Equal(t, 2, result.Corpus.Len())
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.WeekStartsOn = "someday"
	_, err := NewRunner(cfg)
	assert.Error(t, err)
}
