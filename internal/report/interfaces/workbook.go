package interfaces

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"campus-energy/internal/analytics/application"
	ingest "campus-energy/internal/ingest/domain"
)

// WorkbookFile is the XLSX export written into the output directory.
const WorkbookFile = "energy_report.xlsx"

// BuildWorkbook renders the aggregate tables into one XLSX workbook.
func BuildWorkbook(title string, summary ExecutiveSummary, tables application.Tables, reports []ingest.LoadReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	overviewSheet := "overview"
	f.SetSheetName("Sheet1", overviewSheet)

	_ = f.SetCellValue(overviewSheet, "A1", title)
	overview := [][]any{
		{"Total Energy (kWh)", summary.TotalKWh},
		{"Highest Usage Building", summary.TopBuilding},
		{"Highest Usage (kWh)", summary.TopBuildingKWh},
		{"Peak Building", summary.PeakBuilding},
		{"Peak Reading (kWh)", summary.PeakKWh},
		{"Peak Time", summary.PeakTime},
		{"Buildings", summary.Buildings},
		{"Readings", summary.Readings},
		{"Files Loaded", summary.FilesLoaded},
		{"Files Skipped", summary.FilesFailed},
		{"Rows Dropped", summary.RowsDropped},
	}
	for i, row := range overview {
		if err := setRow(f, overviewSheet, i+3, row); err != nil {
			return nil, err
		}
	}

	summaryRows := [][]any{{"Building", "Readings", "Total (kWh)", "Mean (kWh)", "Min (kWh)", "Max (kWh)"}}
	for _, s := range tables.Summary {
		summaryRows = append(summaryRows, []any{s.Building, s.Count, s.Total, formatFixed(s.Mean, 2), s.Min, s.Max})
	}
	peakRows := [][]any{{"Building", "Total (kWh)", "Peak Time", "Peak (kWh)"}}
	for _, p := range tables.Peaks {
		if p.HasPeak {
			peakRows = append(peakRows, []any{p.Building, p.TotalKWh, formatTimestamp(p.PeakTime), p.PeakKWh})
		} else {
			peakRows = append(peakRows, []any{p.Building, p.TotalKWh, "", ""})
		}
	}
	dailyRows := [][]any{{"Building", "Day", "Energy (kWh)"}}
	for _, b := range tables.Daily {
		dailyRows = append(dailyRows, []any{b.Building, formatDate(b.Start), b.KWh})
	}
	weeklyRows := [][]any{{"Building", "Week Start", "Week", "Energy (kWh)"}}
	for _, b := range tables.Weekly {
		weeklyRows = append(weeklyRows, []any{b.Building, formatDate(b.Start), b.TimeKey.String(), b.KWh})
	}
	fileRows := [][]any{{"Source", "Status", "Rows Read", "Rows Kept", "Malformed", "Error"}}
	for _, r := range reports {
		fileRows = append(fileRows, []any{r.Source, string(r.Status), r.RowsRead, r.RowsKept, r.Malformed, r.ErrorString()})
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{"buildings", summaryRows},
		{"peaks", peakRows},
		{"daily", dailyRows},
		{"weekly", weeklyRows},
		{"files", fileRows},
	}
	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, err
		}
		for i, row := range sheet.rows {
			if err := setRow(f, sheet.name, i+1, row); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("workbook %s row %d: %w", sheet, row, err)
	}
	return f.SetSheetRow(sheet, cell, &values)
}
