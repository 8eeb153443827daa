package statistic

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Reading is a single observation owned by one Block.
type Reading struct {
	At  time.Time
	KWh float64
}

// Validate ensures the reading can be accumulated.
func (r Reading) Validate() error {
	if r.At.IsZero() || math.IsNaN(r.KWh) || math.IsInf(r.KWh, 0) {
		return ErrInvalidReading
	}
	return nil
}

// Bucket is the summed usage of one building over one calendar bucket.
// KWh is the float view of Exact; bucket sums reconcile to Summary.Exact
// only in decimal, summing the floats may differ in the last bits.
type Bucket struct {
	Building    string
	Granularity Granularity
	Start       time.Time
	TimeKey     TimeKey
	KWh         float64
	Exact       decimal.Decimal
}

// Summary holds total/mean/min/max for one building.
// Invariant: Min <= Mean <= Max whenever Count > 0.
type Summary struct {
	Building string
	Count    int
	Total    float64
	Exact    decimal.Decimal
	Mean     float64
	Min      float64
	Max      float64
}

// Block accumulates the readings of one building. It keeps running totals,
// extrema, the peak reading and day/week buckets instead of the readings.
type Block struct {
	name      string
	weekStart time.Weekday

	count int
	total decimal.Decimal
	min   float64
	max   float64
	peak  Reading

	days  map[time.Time]decimal.Decimal
	weeks map[time.Time]decimal.Decimal
}

// NewBlock creates an empty block for building name.
func NewBlock(name string, weekStart time.Weekday) (*Block, error) {
	if name == "" {
		return nil, ErrEmptyBuilding
	}
	return &Block{
		name:      name,
		weekStart: weekStart,
		days:      make(map[time.Time]decimal.Decimal),
		weeks:     make(map[time.Time]decimal.Decimal),
	}, nil
}

// Add appends a reading. The peak only moves on a strictly larger value,
// so ties keep the first reading added.
func (b *Block) Add(r Reading) error {
	if err := r.Validate(); err != nil {
		return err
	}
	day, err := BucketStart(GranularityDay, r.At, b.weekStart)
	if err != nil {
		return err
	}
	week, err := BucketStart(GranularityWeek, r.At, b.weekStart)
	if err != nil {
		return err
	}

	value := decimal.NewFromFloat(r.KWh)
	if b.count == 0 {
		b.min, b.max, b.peak = r.KWh, r.KWh, r
	} else {
		if r.KWh < b.min {
			b.min = r.KWh
		}
		if r.KWh > b.max {
			b.max = r.KWh
			b.peak = r
		}
	}
	b.count++
	b.total = b.total.Add(value)
	b.days[day] = b.days[day].Add(value)
	b.weeks[week] = b.weeks[week].Add(value)
	return nil
}

// Name returns the building name.
func (b *Block) Name() string { return b.name }

// Count returns the number of readings added.
func (b *Block) Count() int { return b.count }

// Total returns the summed usage.
func (b *Block) Total() float64 { return b.total.InexactFloat64() }

// TotalDecimal returns the exact summed usage.
func (b *Block) TotalDecimal() decimal.Decimal { return b.total }

// Peak returns the reading with the largest kWh and whether one exists.
func (b *Block) Peak() (Reading, bool) {
	if b.count == 0 {
		return Reading{}, false
	}
	return b.peak, true
}

// Summary returns the building statistics and whether any reading exists.
func (b *Block) Summary() (Summary, bool) {
	if b.count == 0 {
		return Summary{}, false
	}
	mean := b.total.Div(decimal.NewFromInt(int64(b.count))).InexactFloat64()
	// decimal division rounds at a fixed precision; keep Min <= Mean <= Max exact.
	mean = math.Min(math.Max(mean, b.min), b.max)
	return Summary{
		Building: b.name,
		Count:    b.count,
		Total:    b.Total(),
		Exact:    b.total,
		Mean:     mean,
		Min:      b.min,
		Max:      b.max,
	}, true
}

// PerDay returns daily sums ordered by day. Days without readings are absent.
func (b *Block) PerDay() []Bucket { return b.buckets(GranularityDay, b.days) }

// PerWeek returns weekly sums ordered by week start.
func (b *Block) PerWeek() []Bucket { return b.buckets(GranularityWeek, b.weeks) }

func (b *Block) buckets(granularity Granularity, sums map[time.Time]decimal.Decimal) []Bucket {
	starts := make([]time.Time, 0, len(sums))
	for start := range sums {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	out := make([]Bucket, 0, len(starts))
	for _, start := range starts {
		key, _ := NewTimeKey(granularity, start)
		out = append(out, Bucket{
			Building:    b.name,
			Granularity: granularity,
			Start:       start,
			TimeKey:     key,
			KWh:         sums[start].InexactFloat64(),
			Exact:       sums[start],
		})
	}
	return out
}
