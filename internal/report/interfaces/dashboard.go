package interfaces

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"

	"campus-energy/internal/analytics/application"
	"campus-energy/internal/analytics/domain/statistic"
)

// DashboardFile is the PDF dashboard written into the output directory.
const DashboardFile = "dashboard.pdf"

var palette = [][3]int{
	{31, 119, 180},
	{255, 127, 14},
	{44, 160, 44},
	{214, 39, 40},
	{148, 103, 189},
	{140, 86, 75},
	{227, 119, 194},
	{127, 127, 127},
}

type panel struct {
	x, y, w, h float64
	yMin, yMax float64
}

func (p panel) yPos(value float64) float64 {
	if p.yMax == p.yMin {
		return p.y + p.h/2
	}
	return p.y + p.h - (value-p.yMin)/(p.yMax-p.yMin)*p.h
}

// BuildDashboardPDF renders daily usage lines, average weekly usage bars and
// the peak reading of every building.
func BuildDashboardPDF(title string, generatedAt time.Time, tables application.Tables) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)

	colors := make(map[string][3]int, len(tables.Summary))
	for i, s := range tables.Summary {
		colors[s.Building] = palette[i%len(palette)]
	}

	drawDailyChart(pdf, panel{x: 25, y: 28, w: 140, h: 65}, tables.Daily, colors)
	drawWeeklyBars(pdf, panel{x: 25, y: 118, w: 165, h: 60}, tables.Weekly, colors)
	drawPeakScatter(pdf, panel{x: 25, y: 205, w: 165, h: 60}, tables.Summary, colors)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawDailyChart(pdf *gofpdf.Fpdf, p panel, daily []statistic.Bucket, colors map[string][3]int) {
	drawTitle(pdf, p, "Daily Energy Use (kWh)")
	if len(daily) == 0 {
		drawAxes(pdf, p)
		return
	}

	first, last := daily[0].Start, daily[0].Start
	values := make([]float64, 0, len(daily))
	for _, b := range daily {
		if b.Start.Before(first) {
			first = b.Start
		}
		if b.Start.After(last) {
			last = b.Start
		}
		values = append(values, b.KWh)
	}
	p.yMin, p.yMax = valueRange(values)
	drawAxes(pdf, p)

	span := last.Sub(first).Hours()
	xPos := func(t time.Time) float64 {
		if span == 0 {
			return p.x + p.w/2
		}
		return p.x + t.Sub(first).Hours()/span*p.w
	}

	pdf.SetLineWidth(0.4)
	var prev *statistic.Bucket
	for i := range daily {
		b := daily[i]
		c := colors[b.Building]
		pdf.SetDrawColor(c[0], c[1], c[2])
		pdf.SetFillColor(c[0], c[1], c[2])
		if prev != nil && prev.Building == b.Building {
			pdf.Line(xPos(prev.Start), p.yPos(prev.KWh), xPos(b.Start), p.yPos(b.KWh))
		}
		pdf.Circle(xPos(b.Start), p.yPos(b.KWh), 0.5, "F")
		prev = &daily[i]
	}

	pdf.SetTextColor(0, 0, 0)
	pdf.Text(p.x, p.y+p.h+4, formatDate(first))
	lastLabel := formatDate(last)
	pdf.Text(p.x+p.w-pdf.GetStringWidth(lastLabel), p.y+p.h+4, lastLabel)

	legendY := p.y
	for _, name := range sortedKeys(colors) {
		c := colors[name]
		pdf.SetFillColor(c[0], c[1], c[2])
		pdf.Rect(p.x+p.w+5, legendY, 3, 3, "F")
		pdf.Text(p.x+p.w+10, legendY+2.5, truncateLabel(name, 16))
		legendY += 5
	}
	resetColors(pdf)
}

func drawWeeklyBars(pdf *gofpdf.Fpdf, p panel, weekly []statistic.Bucket, colors map[string][3]int) {
	drawTitle(pdf, p, "Average Weekly Use (kWh)")

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, b := range weekly {
		sums[b.Building] += b.KWh
		counts[b.Building]++
	}
	names := sortedKeys(counts)
	averages := make([]float64, len(names))
	for i, name := range names {
		averages[i] = sums[name] / float64(counts[name])
	}
	p.yMin, p.yMax = valueRange(averages)
	drawAxes(pdf, p)
	if len(names) == 0 {
		return
	}

	slot := p.w / float64(len(names))
	barWidth := slot * 0.6
	zero := p.yPos(math.Max(p.yMin, 0))
	for i, name := range names {
		c := colors[name]
		pdf.SetFillColor(c[0], c[1], c[2])
		x := p.x + float64(i)*slot + (slot-barWidth)/2
		top := p.yPos(averages[i])
		pdf.Rect(x, math.Min(top, zero), barWidth, math.Abs(zero-top), "F")
		drawCategoryLabel(pdf, p, x+barWidth/2, name)
	}
	resetColors(pdf)
}

func drawPeakScatter(pdf *gofpdf.Fpdf, p panel, summaries []statistic.Summary, colors map[string][3]int) {
	drawTitle(pdf, p, "Peak Reading per Building (kWh)")

	peaks := make([]float64, len(summaries))
	for i, s := range summaries {
		peaks[i] = s.Max
	}
	p.yMin, p.yMax = valueRange(peaks)
	drawAxes(pdf, p)
	if len(summaries) == 0 {
		return
	}

	slot := p.w / float64(len(summaries))
	for i, s := range summaries {
		c := colors[s.Building]
		pdf.SetFillColor(c[0], c[1], c[2])
		x := p.x + float64(i)*slot + slot/2
		pdf.Circle(x, p.yPos(s.Max), 1.2, "F")
		drawCategoryLabel(pdf, p, x, s.Building)
	}
	resetColors(pdf)
}

func drawTitle(pdf *gofpdf.Fpdf, p panel, title string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Text(p.x, p.y-4, title)
	pdf.SetFont("Arial", "", 8)
}

func drawAxes(pdf *gofpdf.Fpdf, p panel) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Line(p.x, p.y, p.x, p.y+p.h)
	pdf.Line(p.x, p.y+p.h, p.x+p.w, p.y+p.h)

	const ticks = 4
	for i := 0; i <= ticks; i++ {
		value := p.yMin + (p.yMax-p.yMin)*float64(i)/ticks
		y := p.yPos(value)
		pdf.Line(p.x-1, y, p.x, y)
		label := formatTick(value)
		pdf.Text(p.x-2-pdf.GetStringWidth(label), y+1, label)
	}
}

func drawCategoryLabel(pdf *gofpdf.Fpdf, p panel, center float64, name string) {
	label := truncateLabel(name, 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(center-pdf.GetStringWidth(label)/2, p.y+p.h+4, label)
}

func resetColors(pdf *gofpdf.Fpdf) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetFillColor(255, 255, 255)
	pdf.SetTextColor(0, 0, 0)
}

// valueRange always includes zero so bars have a baseline.
func valueRange(values []float64) (float64, float64) {
	low, high := 0.0, 0.0
	for _, v := range values {
		low = math.Min(low, v)
		high = math.Max(high, v)
	}
	if low == high {
		high = low + 1
	}
	return low, high
}

func formatTick(value float64) string {
	if math.Abs(value) >= 100 {
		return fmt.Sprintf("%.0f", value)
	}
	return fmt.Sprintf("%.1f", value)
}

func truncateLabel(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "~"
}
