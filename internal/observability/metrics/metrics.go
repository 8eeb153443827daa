package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	ingest "campus-energy/internal/ingest/domain"
)

// Run and report results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoData  = "no_data"
)

const (
	metricPrefix = "energy_pipeline_"

	stageRead      = "read"
	stageMalformed = "malformed"
	stageKept      = "kept"
)

// Metrics bundles pipeline metrics on a private registry. A batch run has
// no listener, so the registry is written out as a textfile after the run.
type Metrics struct {
	registry *prometheus.Registry

	filesTotal   *prometheus.CounterVec
	rowsTotal    *prometheus.CounterVec
	rowsDropped  *prometheus.CounterVec
	loadLatency  *prometheus.HistogramVec
	runTotal     *prometheus.CounterVec
	runLatency   prometheus.Histogram
	corpusRows   prometheus.Gauge
	buildings    prometheus.Gauge
	reportsTotal *prometheus.CounterVec
}

// New constructs and registers metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "files_total",
				Help: "Total source files by load status",
			},
			[]string{"status"},
		),
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_total",
				Help: "Total source rows by stage",
			},
			[]string{"stage"},
		),
		rowsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_dropped_total",
				Help: "Total rows dropped during coercion by reason",
			},
			[]string{"reason"},
		),
		loadLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "file_load_seconds",
				Help:    "Source file load latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		runTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "runs_total",
				Help: "Total pipeline runs by result",
			},
			[]string{"result"},
		),
		runLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "run_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		corpusRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "corpus_rows",
			Help: "Rows in the merged corpus of the last run",
		}),
		buildings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "buildings",
			Help: "Distinct buildings in the merged corpus of the last run",
		}),
		reportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reports_total",
				Help: "Total report artifacts by format and result",
			},
			[]string{"format", "result"},
		),
	}
	m.registry.MustRegister(
		m.filesTotal,
		m.rowsTotal,
		m.rowsDropped,
		m.loadLatency,
		m.runTotal,
		m.runLatency,
		m.corpusRows,
		m.buildings,
		m.reportsTotal,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFile records one file load report.
func (m *Metrics) ObserveFile(report ingest.LoadReport) {
	if m == nil {
		return
	}
	status := string(report.Status)
	if status == "" {
		status = "unknown"
	}
	m.filesTotal.WithLabelValues(status).Inc()
	m.loadLatency.WithLabelValues(status).Observe(report.Duration.Seconds())
	m.rowsTotal.WithLabelValues(stageRead).Add(float64(report.RowsRead))
	m.rowsTotal.WithLabelValues(stageMalformed).Add(float64(report.Malformed))
	m.rowsTotal.WithLabelValues(stageKept).Add(float64(report.RowsKept))
	for reason, count := range report.Drops {
		m.rowsDropped.WithLabelValues(string(reason)).Add(float64(count))
	}
}

// ObserveRun records the run result, duration and corpus shape.
func (m *Metrics) ObserveRun(result string, duration time.Duration, rows, buildings int) {
	if m == nil {
		return
	}
	if result == "" {
		result = ResultSuccess
	}
	m.runTotal.WithLabelValues(result).Inc()
	m.runLatency.Observe(duration.Seconds())
	m.corpusRows.Set(float64(rows))
	m.buildings.Set(float64(buildings))
}

// ObserveReport records one written report artifact.
func (m *Metrics) ObserveReport(format, result string) {
	if m == nil {
		return
	}
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	m.reportsTotal.WithLabelValues(format, result).Inc()
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
