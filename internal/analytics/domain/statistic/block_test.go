package statistic

import (
	"errors"
	"math"
	"testing"
	"time"

	ingest "campus-energy/internal/ingest/domain"
)

func ts(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func TestBlockPeakKeepsFirstOnTie(t *testing.T) {
	block, err := NewBlock("Lib", time.Monday)
	if err != nil {
		t.Fatalf("new block: %v", err)
	}
	for _, r := range []Reading{{At: ts(1, 0), KWh: 3}, {At: ts(1, 1), KWh: 7}, {At: ts(1, 2), KWh: 7}, {At: ts(1, 3), KWh: 5}} {
		if err := block.Add(r); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	peak, ok := block.Peak()
	if !ok {
		t.Fatalf("expected peak")
	}
	if !peak.At.Equal(ts(1, 1)) || peak.KWh != 7 {
		t.Fatalf("expected first 7 kWh reading, got %+v", peak)
	}
	if block.Total() != 22 || block.Count() != 4 {
		t.Fatalf("unexpected total %v count %d", block.Total(), block.Count())
	}
}

func TestBlockSummaryBounds(t *testing.T) {
	block, _ := NewBlock("Lib", time.Monday)
	for i, v := range []float64{0.1, 0.2, 0.4} {
		if err := block.Add(Reading{At: ts(2, i), KWh: v}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	summary, ok := block.Summary()
	if !ok {
		t.Fatalf("expected summary")
	}
	if summary.Total != 0.7 {
		t.Fatalf("expected exact decimal total 0.7, got %v", summary.Total)
	}
	if summary.Min > summary.Mean || summary.Mean > summary.Max {
		t.Fatalf("bounds violated: %+v", summary)
	}
	if math.Abs(summary.Mean-0.7/3) > 1e-9 {
		t.Fatalf("unexpected mean %v", summary.Mean)
	}
}

func TestEmptyBlock(t *testing.T) {
	block, _ := NewBlock("Empty", time.Monday)
	if _, ok := block.Peak(); ok {
		t.Fatalf("empty block has no peak")
	}
	if _, ok := block.Summary(); ok {
		t.Fatalf("empty block has no summary")
	}
	if len(block.PerDay()) != 0 || len(block.PerWeek()) != 0 {
		t.Fatalf("empty block has no buckets")
	}
	if _, err := NewBlock("", time.Monday); !errors.Is(err, ErrEmptyBuilding) {
		t.Fatalf("expected ErrEmptyBuilding, got %v", err)
	}
}

func TestBlockBucketsAreSparseAndSorted(t *testing.T) {
	block, _ := NewBlock("Hall", time.Monday)
	readings := []Reading{
		{At: ts(9, 8), KWh: 4},
		{At: ts(1, 0), KWh: 1},
		{At: ts(1, 23), KWh: 2},
		{At: ts(7, 12), KWh: 3},
	}
	for _, r := range readings {
		if err := block.Add(r); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	days := block.PerDay()
	wantDays := map[TimeKey]float64{"20240101": 3, "20240107": 3, "20240109": 4}
	if len(days) != len(wantDays) {
		t.Fatalf("expected %d day buckets, got %d", len(wantDays), len(days))
	}
	for i, bucket := range days {
		if i > 0 && !days[i-1].Start.Before(bucket.Start) {
			t.Fatalf("days not sorted")
		}
		if wantDays[bucket.TimeKey] != bucket.KWh {
			t.Fatalf("day %s: expected %v, got %v", bucket.TimeKey, wantDays[bucket.TimeKey], bucket.KWh)
		}
	}

	weeks := block.PerWeek()
	if len(weeks) != 2 {
		t.Fatalf("expected 2 week buckets, got %d", len(weeks))
	}
	if weeks[0].TimeKey != "2024-W01" || weeks[0].KWh != 6 || !weeks[0].Start.Equal(ts(1, 0)) {
		t.Fatalf("unexpected first week %+v", weeks[0])
	}
	if weeks[1].TimeKey != "2024-W02" || weeks[1].KWh != 4 {
		t.Fatalf("unexpected second week %+v", weeks[1])
	}
}

func TestBlockManagerFeedReportsFailures(t *testing.T) {
	corpus := ingest.NewCorpus([]ingest.CanonicalRow{
		{Building: "A", Timestamp: ts(1, 0), KWh: 1},
		{Building: "B", Timestamp: ts(1, 0), KWh: math.NaN()},
		{Building: "", Timestamp: ts(1, 1), KWh: 2},
		{Building: "A", KWh: 2},
		{Building: "A", Timestamp: ts(1, 2), KWh: 4},
	})

	manager := NewBlockManager(time.Monday)
	failures := manager.Feed(corpus)

	if len(failures) != 3 {
		t.Fatalf("expected 3 failures, got %d", len(failures))
	}
	if failures[0].Index != 1 || !errors.Is(failures[0].Err, ErrInvalidReading) {
		t.Fatalf("unexpected failure %+v", failures[0])
	}
	if !errors.Is(failures[1].Err, ErrEmptyBuilding) {
		t.Fatalf("expected empty building failure, got %v", failures[1].Err)
	}
	if _, ok := manager.Block("B"); ok {
		t.Fatalf("invalid reading must not create a block")
	}

	summaries := manager.Summarize()
	if len(summaries) != 1 || summaries[0].Building != "A" || summaries[0].TotalKWh != 5 {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
	if !summaries[0].HasPeak || summaries[0].PeakKWh != 4 {
		t.Fatalf("unexpected peak %+v", summaries[0])
	}
}

func TestBlockManagerCreatesBlocksLazily(t *testing.T) {
	manager := NewBlockManager(time.Monday)
	if len(manager.Blocks()) != 0 {
		t.Fatalf("expected no blocks")
	}
	for _, name := range []string{"Zoo", "Arts", "Zoo"} {
		if err := manager.Add(name, Reading{At: ts(3, 0), KWh: 1}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	blocks := manager.Blocks()
	if len(blocks) != 2 || blocks[0].Name() != "Arts" || blocks[1].Name() != "Zoo" {
		t.Fatalf("unexpected blocks")
	}
	if blocks[1].Count() != 2 {
		t.Fatalf("expected 2 readings for Zoo, got %d", blocks[1].Count())
	}
}
