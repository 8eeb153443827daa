package application

import (
	"time"

	"campus-energy/internal/analytics/domain/statistic"
	ingest "campus-energy/internal/ingest/domain"
)

// Tables bundles every aggregate derived from one corpus.
type Tables struct {
	Daily    []statistic.Bucket
	Weekly   []statistic.Bucket
	Summary  []statistic.Summary
	Peaks    []statistic.BlockSummary
	Failures []statistic.RowFailure
}

// Aggregator derives bucketed and per-building views from a corpus.
// All views come from the same BlockManager, so totals always agree.
type Aggregator struct {
	weekStart time.Weekday
}

// NewAggregator constructs an Aggregator with the given week start.
func NewAggregator(weekStart time.Weekday) *Aggregator {
	return &Aggregator{weekStart: weekStart}
}

// Group feeds the corpus into a fresh BlockManager.
func (a *Aggregator) Group(corpus ingest.Corpus) (*statistic.BlockManager, []statistic.RowFailure) {
	manager := statistic.NewBlockManager(a.weekStart)
	failures := manager.Feed(corpus)
	return manager, failures
}

// DailyStats sums kWh per building and calendar day.
func (a *Aggregator) DailyStats(corpus ingest.Corpus) []statistic.Bucket {
	manager, _ := a.Group(corpus)
	return dailyStats(manager)
}

// WeeklyStats sums kWh per building and calendar week.
func (a *Aggregator) WeeklyStats(corpus ingest.Corpus) []statistic.Bucket {
	manager, _ := a.Group(corpus)
	return weeklyStats(manager)
}

// BuildingSummary returns total/mean/min/max per building.
func (a *Aggregator) BuildingSummary(corpus ingest.Corpus) []statistic.Summary {
	manager, _ := a.Group(corpus)
	return buildingSummary(manager)
}

// Compute derives every table in one pass over the corpus.
func (a *Aggregator) Compute(corpus ingest.Corpus) Tables {
	manager, failures := a.Group(corpus)
	return Tables{
		Daily:    dailyStats(manager),
		Weekly:   weeklyStats(manager),
		Summary:  buildingSummary(manager),
		Peaks:    manager.Summarize(),
		Failures: failures,
	}
}

func dailyStats(manager *statistic.BlockManager) []statistic.Bucket {
	var out []statistic.Bucket
	for _, block := range manager.Blocks() {
		out = append(out, block.PerDay()...)
	}
	return out
}

func weeklyStats(manager *statistic.BlockManager) []statistic.Bucket {
	var out []statistic.Bucket
	for _, block := range manager.Blocks() {
		out = append(out, block.PerWeek()...)
	}
	return out
}

func buildingSummary(manager *statistic.BlockManager) []statistic.Summary {
	blocks := manager.Blocks()
	out := make([]statistic.Summary, 0, len(blocks))
	for _, block := range blocks {
		if summary, ok := block.Summary(); ok {
			out = append(out, summary)
		}
	}
	return out
}
