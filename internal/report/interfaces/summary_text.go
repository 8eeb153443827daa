package interfaces

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"campus-energy/internal/analytics/domain/statistic"
	ingest "campus-energy/internal/ingest/domain"
)

// SummaryTextFile is the executive summary written into the output directory.
const SummaryTextFile = "summary.txt"

// ExecutiveSummary holds the headline figures of a run.
type ExecutiveSummary struct {
	TotalKWh         float64
	TopBuilding      string
	TopBuildingKWh   float64
	PeakBuilding     string
	PeakKWh          float64
	PeakTime         string
	Buildings        int
	Readings         int
	FilesLoaded      int
	FilesFailed      int
	RowsDropped      int
	MalformedSkipped int
}

// BuildExecutiveSummary derives headline figures. The global peak is the
// first row in corpus order holding the maximum kWh.
func BuildExecutiveSummary(corpus ingest.Corpus, peaks []statistic.BlockSummary, reports []ingest.LoadReport) ExecutiveSummary {
	var summary ExecutiveSummary
	total := decimal.Zero
	peakIdx := -1
	corpus.Each(func(i int, row ingest.CanonicalRow) {
		total = total.Add(decimal.NewFromFloat(row.KWh))
		if peakIdx < 0 || row.KWh > summary.PeakKWh {
			peakIdx = i
			summary.PeakKWh = row.KWh
			summary.PeakBuilding = row.Building
			summary.PeakTime = formatTimestamp(row.Timestamp)
		}
	})
	summary.TotalKWh = total.InexactFloat64()
	summary.Readings = corpus.Len()
	summary.Buildings = len(peaks)

	for i, p := range peaks {
		if i == 0 || p.TotalKWh > summary.TopBuildingKWh {
			summary.TopBuilding = p.Building
			summary.TopBuildingKWh = p.TotalKWh
		}
	}
	for _, r := range reports {
		if r.Failed() {
			summary.FilesFailed++
		} else {
			summary.FilesLoaded++
		}
		summary.RowsDropped += r.Dropped()
		summary.MalformedSkipped += r.Malformed
	}
	return summary
}

// WriteSummaryText writes the plain-text executive summary.
func WriteSummaryText(outDir, title string, summary ExecutiveSummary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", len(title)))
	fmt.Fprintf(&b, "Total Campus Consumption: %s kWh\n", formatFixed(summary.TotalKWh, 2))
	fmt.Fprintf(&b, "Highest Usage Building: %s (%s kWh)\n", summary.TopBuilding, formatFixed(summary.TopBuildingKWh, 2))
	fmt.Fprintf(&b, "Peak Reading: %s kWh at %s (%s)\n", formatFixed(summary.PeakKWh, 2), summary.PeakTime, summary.PeakBuilding)
	fmt.Fprintf(&b, "\nBuildings: %d\n", summary.Buildings)
	fmt.Fprintf(&b, "Readings: %d\n", summary.Readings)
	fmt.Fprintf(&b, "Files loaded: %d\n", summary.FilesLoaded)
	fmt.Fprintf(&b, "Files skipped: %d\n", summary.FilesFailed)
	fmt.Fprintf(&b, "Rows dropped: %d\n", summary.RowsDropped)
	fmt.Fprintf(&b, "Malformed lines skipped: %d\n", summary.MalformedSkipped)
	return os.WriteFile(filepath.Join(outDir, SummaryTextFile), []byte(b.String()), 0o644)
}
