package memory

import (
	"context"
	"sync"

	"campus-energy/internal/analytics/application"
	"campus-energy/internal/analytics/domain/statistic"
)

type bucketKey struct {
	building    string
	granularity statistic.Granularity
	timeKey     statistic.TimeKey
}

// StatisticRepository is an in-memory aggregate sink for dry runs and tests.
// It keys rows the same way the Postgres repository does.
type StatisticRepository struct {
	mu        sync.RWMutex
	buckets   map[bucketKey]statistic.Bucket
	summaries map[string]statistic.Summary
	saves     int
}

// NewStatisticRepository constructs a repository.
func NewStatisticRepository() *StatisticRepository {
	return &StatisticRepository{
		buckets:   make(map[bucketKey]statistic.Bucket),
		summaries: make(map[string]statistic.Summary),
	}
}

// SaveTables upserts every bucket and summary.
func (r *StatisticRepository) SaveTables(ctx context.Context, tables application.Tables) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bucket := range append(append([]statistic.Bucket{}, tables.Daily...), tables.Weekly...) {
		if !bucket.Granularity.IsValid() {
			return statistic.ErrInvalidGranularity
		}
		r.buckets[bucketKey{bucket.Building, bucket.Granularity, bucket.TimeKey}] = bucket
	}
	for _, summary := range tables.Summary {
		r.summaries[summary.Building] = summary
	}
	r.saves++
	return nil
}

// Bucket returns a stored bucket.
func (r *StatisticRepository) Bucket(building string, granularity statistic.Granularity, key statistic.TimeKey) (statistic.Bucket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bucket, ok := r.buckets[bucketKey{building, granularity, key}]
	return bucket, ok
}

// Summary returns a stored building summary.
func (r *StatisticRepository) Summary(building string) (statistic.Summary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summary, ok := r.summaries[building]
	return summary, ok
}

// Len returns the number of stored buckets.
func (r *StatisticRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buckets)
}

// Saves returns how many times SaveTables succeeded.
func (r *StatisticRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
