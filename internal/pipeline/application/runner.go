package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	analytics "campus-energy/internal/analytics/application"
	"campus-energy/internal/config"
	ingestapp "campus-energy/internal/ingest/application"
	ingest "campus-energy/internal/ingest/domain"
	"campus-energy/internal/ingest/infrastructure/filesystem"
	"campus-energy/internal/observability/metrics"
	reportapp "campus-energy/internal/report/application"
)

// Status is the terminal state of a run.
type Status string

const (
	// StatusCompleted means aggregates and reports were produced.
	StatusCompleted Status = "completed"
	// StatusNoData means no file contributed a valid row; nothing was written.
	StatusNoData Status = "no_data"
)

// Clock provides time for the runner.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Sink receives the aggregate tables of a completed run.
type Sink interface {
	SaveTables(ctx context.Context, tables analytics.Tables) error
}

// Result is what a run produced, including every per-file outcome.
type Result struct {
	RunID     string
	Status    Status
	Reason    string
	Files     []ingest.LoadReport
	Corpus    ingest.Corpus
	Tables    analytics.Tables
	Artifacts []string
	Duration  time.Duration
}

// FailedFiles returns the sources that contributed no rows.
func (r *Result) FailedFiles() []ingest.LoadReport {
	var failed []ingest.LoadReport
	for _, file := range r.Files {
		if file.Failed() {
			failed = append(failed, file)
		}
	}
	return failed
}

// Runner wires discovery, loading, aggregation and reporting for one batch.
type Runner struct {
	cfg        config.Config
	merger     *ingestapp.Merger
	aggregator *analytics.Aggregator
	publisher  *reportapp.Publisher
	sink       Sink
	metrics    *metrics.Metrics
	logger     *log.Logger
	clock      Clock
	newRunID   func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithSink sets an aggregate sink.
func WithSink(sink Sink) Option {
	return func(r *Runner) {
		r.sink = sink
	}
}

// WithMetrics sets the metrics bundle.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithClock overrides the clock.
func WithClock(clock Clock) Option {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newRunID = fn
		}
	}
}

// NewRunner builds a Runner from an explicit configuration value.
func NewRunner(cfg config.Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:      cfg,
		clock:    SystemClock{},
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}

	normalizer, err := ingestapp.NewNormalizer(cfg.Columns)
	if err != nil {
		return nil, err
	}
	delimiter, _ := cfg.DelimiterRune()
	loader, err := ingestapp.NewLoader(
		normalizer,
		ingestapp.NewCoercer(cfg.TimestampLayouts, cfg.RejectNegativeKWh),
		ingestapp.WithDelimiter(delimiter),
		ingestapp.WithLogger(r.logger),
	)
	if err != nil {
		return nil, err
	}
	weekStart, _ := cfg.WeekStart()

	r.merger = ingestapp.NewMerger(loader, cfg.Workers)
	r.aggregator = analytics.NewAggregator(weekStart)
	r.publisher, err = reportapp.NewPublisher(cfg.OutputDir, reportapp.Options{
		Title:     cfg.ReportTitle,
		Workbook:  cfg.Exports.Workbook,
		Dashboard: cfg.Exports.Dashboard,
		Archive:   cfg.Exports.Archive,
	}, r.metrics)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Run executes one batch. A run where no file yields a valid row returns
// StatusNoData and a nil error; only infrastructure failures return errors.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := r.clock.Now()
	result := &Result{RunID: r.newRunID()}
	r.logf("run_start", result.RunID, "input_dir="+r.cfg.InputDir)

	paths, err := filesystem.Discover(r.cfg.InputDir, r.cfg.Pattern)
	if errors.Is(err, filesystem.ErrInputDirMissing) {
		return r.halt(result, started, err.Error()), nil
	}
	if err != nil {
		return r.fail(result, started, fmt.Errorf("discover sources: %w", err))
	}
	if len(paths) == 0 {
		return r.halt(result, started, "no source files matched "+r.cfg.Pattern), nil
	}

	corpus, files, err := r.merger.Merge(ctx, paths)
	result.Files = files
	for _, file := range files {
		r.metrics.ObserveFile(file)
	}
	if err != nil {
		return r.fail(result, started, fmt.Errorf("load sources: %w", err))
	}
	drops := ingest.DropTotals(files)
	for _, reason := range ingest.SortedReasons(drops) {
		r.logf("rows_dropped", result.RunID, fmt.Sprintf("reason=%s count=%d", reason, drops[reason]))
	}
	if corpus.Empty() {
		return r.halt(result, started, "no valid data found"), nil
	}
	result.Corpus = corpus

	result.Tables = r.aggregator.Compute(corpus)
	for _, failure := range result.Tables.Failures {
		r.logf("row_skipped", result.RunID, fmt.Sprintf("index=%d building=%s error=%v", failure.Index, failure.Building, failure.Err))
	}

	artifacts, err := r.publisher.Publish(ctx, reportapp.Input{
		RunID:       result.RunID,
		InputDir:    r.cfg.InputDir,
		GeneratedAt: started,
		Corpus:      corpus,
		Tables:      result.Tables,
		Reports:     files,
	})
	result.Artifacts = artifacts
	if err != nil {
		return r.fail(result, started, fmt.Errorf("publish reports: %w", err))
	}

	if r.sink != nil {
		if err := r.sink.SaveTables(ctx, result.Tables); err != nil {
			return r.fail(result, started, fmt.Errorf("save aggregates: %w", err))
		}
	}

	result.Status = StatusCompleted
	result.Duration = r.clock.Now().Sub(started)
	r.metrics.ObserveRun(metrics.ResultSuccess, result.Duration, corpus.Len(), len(result.Tables.Summary))
	r.flushMetrics(result.RunID)
	r.logf("run_completed", result.RunID, fmt.Sprintf("rows=%d buildings=%d files=%d failed_files=%d artifacts=%s",
		corpus.Len(), len(result.Tables.Summary), len(files), len(result.FailedFiles()), strings.Join(artifacts, ",")))
	return result, nil
}

func (r *Runner) halt(result *Result, started time.Time, reason string) *Result {
	result.Status = StatusNoData
	result.Reason = reason
	result.Duration = r.clock.Now().Sub(started)
	r.metrics.ObserveRun(metrics.ResultNoData, result.Duration, 0, 0)
	r.flushMetrics(result.RunID)
	r.logf("run_halted", result.RunID, "reason="+reason)
	return result
}

func (r *Runner) fail(result *Result, started time.Time, err error) (*Result, error) {
	result.Duration = r.clock.Now().Sub(started)
	r.metrics.ObserveRun(metrics.ResultError, result.Duration, result.Corpus.Len(), len(result.Tables.Summary))
	r.flushMetrics(result.RunID)
	r.logf("run_failed", result.RunID, "error="+err.Error())
	return result, err
}

func (r *Runner) flushMetrics(runID string) {
	if err := r.metrics.WriteTextfile(r.cfg.MetricsTextfile); err != nil {
		r.logf("metrics_write_failed", runID, "error="+err.Error())
	}
}

func (r *Runner) logf(event, runID, detail string) {
	if r.logger == nil {
		return
	}
	r.logger.Printf("event=%s run_id=%s %s", event, runID, detail)
}
