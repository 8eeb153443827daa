package application

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	ingest "campus-energy/internal/ingest/domain"
)

// Loader reads one source file and turns it into canonical rows.
// It never fails the batch: every problem ends up in the LoadReport.
type Loader struct {
	normalizer *Normalizer
	coercer    Coercer
	delimiter  rune
	logger     *log.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDelimiter forces a field delimiter instead of sniffing it.
func WithDelimiter(delimiter rune) LoaderOption {
	return func(l *Loader) {
		l.delimiter = delimiter
	}
}

// WithLogger sets the loader logger.
func WithLogger(logger *log.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader constructs a Loader.
func NewLoader(normalizer *Normalizer, coercer Coercer, opts ...LoaderOption) (*Loader, error) {
	if normalizer == nil {
		return nil, errors.New("ingest loader: nil normalizer")
	}
	loader := &Loader{normalizer: normalizer, coercer: coercer}
	for _, opt := range opts {
		opt(loader)
	}
	return loader, nil
}

// Load reads, normalizes and coerces the file at path.
func (l *Loader) Load(ctx context.Context, path string) (report ingest.LoadReport) {
	started := time.Now()
	report = ingest.LoadReport{
		Source:        path,
		Drops:         make(map[ingest.DropReason]int),
		LoadStartedAt: started,
	}
	defer func() {
		report.Duration = time.Since(started)
	}()

	if err := ctx.Err(); err != nil {
		return l.unreadable(report, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return l.unreadable(report, err)
	}
	defer file.Close()

	raw, err := ReadTable(path, file, l.delimiter)
	if err != nil {
		return l.unreadable(report, err)
	}

	table, fallbacks := l.normalizer.Normalize(raw)
	report.Columns = raw.Columns
	report.FallbackUsed = fallbacks
	report.Malformed = table.Malformed
	report.RowsRead = len(table.Rows)
	report.Rows = l.coerce(table, report.Drops)
	report.RowsKept = len(report.Rows)

	if report.RowsKept == 0 {
		report.Status = ingest.FileStatusEmpty
		l.logf("file_empty", report)
		return report
	}
	report.Status = ingest.FileStatusLoaded
	l.logf("file_loaded", report)
	return report
}

func (l *Loader) coerce(table ingest.RawTable, drops map[ingest.DropReason]int) []ingest.CanonicalRow {
	tsIdx := table.Index(ingest.ColumnTimestamp)
	kwhIdx := table.Index(ingest.ColumnKWh)
	buildingIdx := table.Index(ingest.ColumnBuilding)
	fallbackBuilding := BuildingFromFilename(table.Source)

	rows := make([]ingest.CanonicalRow, 0, len(table.Rows))
	for _, record := range table.Rows {
		ts, err := l.coercer.Timestamp(table.Value(record, tsIdx))
		if err != nil {
			drops[ingest.DropInvalidTimestamp]++
			continue
		}
		kwh, err := l.coercer.KWh(table.Value(record, kwhIdx))
		if err != nil {
			if errors.Is(err, ingest.ErrNegativeKWh) {
				drops[ingest.DropNegativeKWh]++
			} else {
				drops[ingest.DropInvalidKWh]++
			}
			continue
		}
		building := strings.TrimSpace(table.Value(record, buildingIdx))
		if building == "" {
			building = fallbackBuilding
		}
		rows = append(rows, ingest.CanonicalRow{Building: building, Timestamp: ts, KWh: kwh})
	}
	return rows
}

func (l *Loader) unreadable(report ingest.LoadReport, err error) ingest.LoadReport {
	report.Status = ingest.FileStatusUnreadable
	report.Err = err
	l.logf("file_unreadable", report)
	return report
}

func (l *Loader) logf(event string, report ingest.LoadReport) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("event=%s source=%s rows_read=%d rows_kept=%d malformed=%d fallbacks=%s error=%s",
		event, report.Source, report.RowsRead, report.RowsKept, report.Malformed,
		strings.Join(report.FallbackUsed, ","), report.ErrorString())
}
