package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campus-energy/internal/analytics/application"
	"campus-energy/internal/analytics/domain/statistic"
)

const (
	defaultBucketTable  = "energy_bucket_statistics"
	defaultSummaryTable = "energy_building_summaries"
)

// StatisticRepository writes aggregate tables to Postgres. Writes are
// upserts keyed by building + time_type + time_key, so reruns over the same
// input leave the tables unchanged.
type StatisticRepository struct {
	db           *sql.DB
	bucketTable  string
	summaryTable string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*StatisticRepository)

// WithTablePrefix prefixes both table names.
func WithTablePrefix(prefix string) RepositoryOption {
	return func(repo *StatisticRepository) {
		if prefix != "" {
			repo.bucketTable = prefix + defaultBucketTable
			repo.summaryTable = prefix + defaultSummaryTable
		}
	}
}

// NewStatisticRepository creates a repository using the default table names.
func NewStatisticRepository(db *sql.DB, opts ...RepositoryOption) *StatisticRepository {
	repo := &StatisticRepository{
		db:           db,
		bucketTable:  defaultBucketTable,
		summaryTable: defaultSummaryTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// EnsureSchema creates the aggregate tables when missing.
func (r *StatisticRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("statistic repo: nil db")
	}
	statements := []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	building TEXT NOT NULL,
	time_type TEXT NOT NULL,
	time_key TEXT NOT NULL,
	period_start TIMESTAMP NOT NULL,
	energy_kwh DOUBLE PRECISION NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (building, time_type, time_key)
)`, r.bucketTable),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	building TEXT PRIMARY KEY,
	reading_count INTEGER NOT NULL,
	total_kwh DOUBLE PRECISION NOT NULL,
	mean_kwh DOUBLE PRECISION NOT NULL,
	min_kwh DOUBLE PRECISION NOT NULL,
	max_kwh DOUBLE PRECISION NOT NULL,
	peak_time TIMESTAMP NULL,
	peak_kwh DOUBLE PRECISION NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, r.summaryTable),
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveTables upserts daily, weekly and summary rows in one transaction.
func (r *StatisticRepository) SaveTables(ctx context.Context, tables application.Tables) error {
	if r == nil || r.db == nil {
		return errors.New("statistic repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	bucketQuery := fmt.Sprintf(`
INSERT INTO %s (
	building,
	time_type,
	time_key,
	period_start,
	energy_kwh
) VALUES (
	$1, $2, $3, $4, $5
)
ON CONFLICT (building, time_type, time_key)
DO UPDATE SET
	period_start = EXCLUDED.period_start,
	energy_kwh = EXCLUDED.energy_kwh,
	updated_at = NOW()`, r.bucketTable)

	buckets := append(append([]statistic.Bucket{}, tables.Daily...), tables.Weekly...)
	for _, bucket := range buckets {
		if !bucket.Granularity.IsValid() {
			return statistic.ErrInvalidGranularity
		}
		if _, err := tx.ExecContext(ctx, bucketQuery,
			bucket.Building,
			string(bucket.Granularity),
			bucket.TimeKey.String(),
			bucket.Start,
			bucket.KWh,
		); err != nil {
			return err
		}
	}

	peaks := make(map[string]statistic.BlockSummary, len(tables.Peaks))
	for _, peak := range tables.Peaks {
		peaks[peak.Building] = peak
	}

	summaryQuery := fmt.Sprintf(`
INSERT INTO %s (
	building,
	reading_count,
	total_kwh,
	mean_kwh,
	min_kwh,
	max_kwh,
	peak_time,
	peak_kwh
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)
ON CONFLICT (building)
DO UPDATE SET
	reading_count = EXCLUDED.reading_count,
	total_kwh = EXCLUDED.total_kwh,
	mean_kwh = EXCLUDED.mean_kwh,
	min_kwh = EXCLUDED.min_kwh,
	max_kwh = EXCLUDED.max_kwh,
	peak_time = EXCLUDED.peak_time,
	peak_kwh = EXCLUDED.peak_kwh,
	updated_at = NOW()`, r.summaryTable)

	for _, summary := range tables.Summary {
		peakTime := sql.NullTime{}
		peakKWh := sql.NullFloat64{}
		if peak, ok := peaks[summary.Building]; ok && peak.HasPeak {
			peakTime = sql.NullTime{Time: peak.PeakTime, Valid: true}
			peakKWh = sql.NullFloat64{Float64: peak.PeakKWh, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, summaryQuery,
			summary.Building,
			summary.Count,
			summary.Total,
			summary.Mean,
			summary.Min,
			summary.Max,
			peakTime,
			peakKWh,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListBuckets returns stored buckets of one granularity for a building.
func (r *StatisticRepository) ListBuckets(ctx context.Context, building string, granularity statistic.Granularity) ([]statistic.Bucket, error) {
	if !granularity.IsValid() {
		return nil, statistic.ErrInvalidGranularity
	}
	query := fmt.Sprintf(`
SELECT
	time_key,
	period_start,
	energy_kwh
FROM %s
WHERE building = $1
	AND time_type = $2
ORDER BY period_start`, r.bucketTable)

	rows, err := r.db.QueryContext(ctx, query, building, string(granularity))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []statistic.Bucket
	for rows.Next() {
		var (
			timeKey     string
			periodStart time.Time
			energyKWh   float64
		)
		if err := rows.Scan(&timeKey, &periodStart, &energyKWh); err != nil {
			return nil, err
		}
		result = append(result, statistic.Bucket{
			Building:    building,
			Granularity: granularity,
			Start:       periodStart.UTC(),
			TimeKey:     statistic.TimeKey(timeKey),
			KWh:         energyKWh,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
