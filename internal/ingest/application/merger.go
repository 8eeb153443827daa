package application

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	ingest "campus-energy/internal/ingest/domain"
)

// FileLoader loads one source file.
type FileLoader interface {
	Load(ctx context.Context, path string) ingest.LoadReport
}

// Merger loads every source and merges the valid rows into one corpus.
type Merger struct {
	loader  FileLoader
	workers int
}

// NewMerger constructs a Merger. Workers below one load files sequentially.
func NewMerger(loader FileLoader, workers int) *Merger {
	if workers < 1 {
		workers = 1
	}
	return &Merger{loader: loader, workers: workers}
}

// Merge loads paths and returns the time-ordered corpus with one report per
// path, in path order. Load order never affects the corpus order.
func (m *Merger) Merge(ctx context.Context, paths []string) (ingest.Corpus, []ingest.LoadReport, error) {
	reports := make([]ingest.LoadReport, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(m.workers)
	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			reports[i] = m.loader.Load(groupCtx, path)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return ingest.Corpus{}, reports, err
	}
	if err := ctx.Err(); err != nil {
		return ingest.Corpus{}, reports, err
	}

	return MergeRows(reports), reports, nil
}

// MergeRows concatenates the rows of loaded reports and sorts them by
// timestamp, then building; equal keys keep their load order.
func MergeRows(reports []ingest.LoadReport) ingest.Corpus {
	total := 0
	for _, report := range reports {
		if report.Status == ingest.FileStatusLoaded {
			total += len(report.Rows)
		}
	}
	rows := make([]ingest.CanonicalRow, 0, total)
	for _, report := range reports {
		if report.Status != ingest.FileStatusLoaded {
			continue
		}
		rows = append(rows, report.Rows...)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		}
		return rows[i].Building < rows[j].Building
	})
	return ingest.NewCorpus(rows)
}
