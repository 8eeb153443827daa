package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	ingest "campus-energy/internal/ingest/domain"
)

func TestObserveFileCountsRows(t *testing.T) {
	m := New()
	m.ObserveFile(ingest.LoadReport{
		Status:    ingest.FileStatusLoaded,
		RowsRead:  5,
		RowsKept:  3,
		Malformed: 1,
		Drops:     map[ingest.DropReason]int{ingest.DropInvalidKWh: 2},
		Duration:  10 * time.Millisecond,
	})
	m.ObserveFile(ingest.LoadReport{Status: ingest.FileStatusUnreadable})

	if got := testutil.ToFloat64(m.filesTotal.WithLabelValues("loaded")); got != 1 {
		t.Fatalf("expected 1 loaded file, got %v", got)
	}
	if got := testutil.ToFloat64(m.filesTotal.WithLabelValues("unreadable")); got != 1 {
		t.Fatalf("expected 1 unreadable file, got %v", got)
	}
	if got := testutil.ToFloat64(m.rowsTotal.WithLabelValues(stageKept)); got != 3 {
		t.Fatalf("expected 3 kept rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.rowsDropped.WithLabelValues("invalid_kwh")); got != 2 {
		t.Fatalf("expected 2 dropped rows, got %v", got)
	}
}

func TestObserveRunAndTextfile(t *testing.T) {
	m := New()
	m.ObserveRun(ResultSuccess, time.Second, 42, 3)
	m.ObserveReport("csv", ResultSuccess)

	if got := testutil.ToFloat64(m.corpusRows); got != 42 {
		t.Fatalf("expected 42 corpus rows, got %v", got)
	}

	path := filepath.Join(t.TempDir(), "energy.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		`energy_pipeline_runs_total{result="success"} 1`,
		`energy_pipeline_reports_total{format="csv",result="success"} 1`,
		`energy_pipeline_buildings 3`,
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("textfile missing %q:\n%s", want, data)
		}
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveFile(ingest.LoadReport{})
	m.ObserveRun(ResultError, 0, 0, 0)
	m.ObserveReport("pdf", ResultError)
	if err := m.WriteTextfile("/nonexistent/dir/file.prom"); err != nil {
		t.Fatalf("nil metrics should not write: %v", err)
	}
	if m.Registry() != nil {
		t.Fatalf("expected nil registry")
	}
}
