package interfaces

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"campus-energy/internal/analytics/domain/statistic"
	ingest "campus-energy/internal/ingest/domain"
)

// Table file names written into the output directory.
const (
	CleanedDataFile     = "cleaned_energy_data.csv"
	BuildingSummaryFile = "building_summary.csv"
	BuildingPeaksFile   = "building_peaks.csv"
	DailyUsageFile      = "daily_usage.csv"
	WeeklyUsageFile     = "weekly_usage.csv"
)

// WriteCleanedData writes the merged corpus.
func WriteCleanedData(outDir string, corpus ingest.Corpus) error {
	rows := make([][]string, 0, corpus.Len())
	corpus.Each(func(_ int, row ingest.CanonicalRow) {
		rows = append(rows, []string{
			row.Building,
			formatTimestamp(row.Timestamp),
			formatFloat(row.KWh),
		})
	})
	return writeCSV(filepath.Join(outDir, CleanedDataFile),
		[]string{"building", "timestamp", "kwh"}, rows)
}

// WriteBuildingSummary writes total/mean/min/max per building.
func WriteBuildingSummary(outDir string, summaries []statistic.Summary) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Building,
			strconv.Itoa(s.Count),
			formatFloat(s.Total),
			formatFixed(s.Mean, 2),
			formatFloat(s.Min),
			formatFloat(s.Max),
		})
	}
	return writeCSV(filepath.Join(outDir, BuildingSummaryFile),
		[]string{"building", "readings", "total", "mean", "min", "max"}, rows)
}

// WriteBuildingPeaks writes the per-building total and peak reading.
func WriteBuildingPeaks(outDir string, peaks []statistic.BlockSummary) error {
	rows := make([][]string, 0, len(peaks))
	for _, p := range peaks {
		peakTime, peakKWh := "", ""
		if p.HasPeak {
			peakTime = formatTimestamp(p.PeakTime)
			peakKWh = formatFloat(p.PeakKWh)
		}
		rows = append(rows, []string{p.Building, formatFloat(p.TotalKWh), peakTime, peakKWh})
	}
	return writeCSV(filepath.Join(outDir, BuildingPeaksFile),
		[]string{"building", "total_kwh", "peak_time", "peak_kwh"}, rows)
}

// WriteDailyUsage writes daily bucket sums.
func WriteDailyUsage(outDir string, buckets []statistic.Bucket) error {
	return writeBuckets(filepath.Join(outDir, DailyUsageFile), buckets)
}

// WriteWeeklyUsage writes weekly bucket sums.
func WriteWeeklyUsage(outDir string, buckets []statistic.Bucket) error {
	return writeBuckets(filepath.Join(outDir, WeeklyUsageFile), buckets)
}

func writeBuckets(path string, buckets []statistic.Bucket) error {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{b.Building, formatDate(b.Start), b.TimeKey.String(), formatFloat(b.KWh)})
	}
	return writeCSV(path, []string{"building", "bucket_start", "time_key", "kwh"}, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}
