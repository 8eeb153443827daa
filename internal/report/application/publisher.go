package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	analytics "campus-energy/internal/analytics/application"
	ingest "campus-energy/internal/ingest/domain"
	reports "campus-energy/internal/report/interfaces"
)

// Report formats, used as metric labels.
const (
	FormatCSV      = "csv"
	FormatText     = "text"
	FormatXLSX     = "xlsx"
	FormatPDF      = "pdf"
	FormatZip      = "zip"
	FormatManifest = "json"
)

// Observer records written artifacts.
type Observer interface {
	ObserveReport(format, result string)
}

// Options toggles optional artifacts.
type Options struct {
	Title     string
	Workbook  bool
	Dashboard bool
	Archive   bool
}

// Input is everything a run hands to the report writers.
type Input struct {
	RunID       string
	InputDir    string
	GeneratedAt time.Time
	Corpus      ingest.Corpus
	Tables      analytics.Tables
	Reports     []ingest.LoadReport
}

type artifact struct {
	format string
	name   string
	write  func() error
}

// Publisher writes the report artifacts of a run into one directory.
type Publisher struct {
	outDir   string
	options  Options
	observer Observer
}

// NewPublisher constructs a Publisher.
func NewPublisher(outDir string, options Options, observer Observer) (*Publisher, error) {
	if outDir == "" {
		return nil, errors.New("report publisher: empty output dir")
	}
	return &Publisher{outDir: outDir, options: options, observer: observer}, nil
}

// Publish writes every artifact and returns their file names in write order.
func (p *Publisher) Publish(ctx context.Context, in Input) ([]string, error) {
	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return nil, err
	}

	summary := reports.BuildExecutiveSummary(in.Corpus, in.Tables.Peaks, in.Reports)
	var written []string
	step := func(format, name string, write func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := write(); err != nil {
			p.observe(format, "error")
			return fmt.Errorf("write %s: %w", name, err)
		}
		p.observe(format, "success")
		written = append(written, name)
		return nil
	}

	steps := []artifact{
		{FormatCSV, reports.CleanedDataFile, func() error { return reports.WriteCleanedData(p.outDir, in.Corpus) }},
		{FormatCSV, reports.BuildingSummaryFile, func() error { return reports.WriteBuildingSummary(p.outDir, in.Tables.Summary) }},
		{FormatCSV, reports.BuildingPeaksFile, func() error { return reports.WriteBuildingPeaks(p.outDir, in.Tables.Peaks) }},
		{FormatCSV, reports.DailyUsageFile, func() error { return reports.WriteDailyUsage(p.outDir, in.Tables.Daily) }},
		{FormatCSV, reports.WeeklyUsageFile, func() error { return reports.WriteWeeklyUsage(p.outDir, in.Tables.Weekly) }},
		{FormatText, reports.SummaryTextFile, func() error { return reports.WriteSummaryText(p.outDir, p.options.Title, summary) }},
	}
	if p.options.Workbook {
		steps = append(steps, artifact{FormatXLSX, reports.WorkbookFile, func() error {
			data, err := reports.BuildWorkbook(p.options.Title, summary, in.Tables, in.Reports)
			if err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(p.outDir, reports.WorkbookFile), data, 0o644)
		}})
	}
	if p.options.Dashboard {
		steps = append(steps, artifact{FormatPDF, reports.DashboardFile, func() error {
			data, err := reports.BuildDashboardPDF(p.options.Title, in.GeneratedAt, in.Tables)
			if err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(p.outDir, reports.DashboardFile), data, 0o644)
		}})
	}

	for _, s := range steps {
		if err := step(s.format, s.name, s.write); err != nil {
			return written, err
		}
	}

	manifest := reports.Manifest{
		RunID:       in.RunID,
		Status:      "completed",
		InputDir:    in.InputDir,
		CorpusRows:  in.Corpus.Len(),
		Buildings:   len(in.Tables.Summary),
		RowFailures: len(in.Tables.Failures),
		Drops:       reports.DropSummary(in.Reports),
		Files:       reports.NewFileEntries(in.Reports),
		Artifacts:   append([]string{}, written...),
	}
	if err := step(FormatManifest, reports.ManifestFile, func() error {
		return reports.WriteManifest(p.outDir, manifest, in.GeneratedAt)
	}); err != nil {
		return written, err
	}

	if p.options.Archive {
		entries := append([]string{}, written...)
		if err := step(FormatZip, reports.ArchiveFile, func() error {
			_, err := reports.WriteArchive(p.outDir, entries)
			return err
		}); err != nil {
			return written, err
		}
	}
	return written, nil
}

func (p *Publisher) observe(format, result string) {
	if p.observer != nil {
		p.observer.ObserveReport(format, result)
	}
}
