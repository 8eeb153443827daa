package statistic

import (
	"sort"
	"time"

	ingest "campus-energy/internal/ingest/domain"
)

// BlockSummary is the per-building total and peak view.
type BlockSummary struct {
	Building string
	TotalKWh float64
	PeakTime time.Time
	PeakKWh  float64
	HasPeak  bool
}

// RowFailure records a corpus row that could not be accumulated.
type RowFailure struct {
	Index    int
	Building string
	Err      error
}

// BlockManager owns one Block per building name.
type BlockManager struct {
	weekStart time.Weekday
	blocks    map[string]*Block
}

// NewBlockManager creates an empty manager.
func NewBlockManager(weekStart time.Weekday) *BlockManager {
	return &BlockManager{
		weekStart: weekStart,
		blocks:    make(map[string]*Block),
	}
}

// Add routes a reading to the building's block, creating it on first use.
func (m *BlockManager) Add(building string, r Reading) error {
	if err := r.Validate(); err != nil {
		return err
	}
	block, ok := m.blocks[building]
	if !ok {
		created, err := NewBlock(building, m.weekStart)
		if err != nil {
			return err
		}
		block = created
		m.blocks[building] = block
	}
	return block.Add(r)
}

// Feed accumulates every corpus row and returns the rows it had to skip.
func (m *BlockManager) Feed(corpus ingest.Corpus) []RowFailure {
	var failures []RowFailure
	corpus.Each(func(i int, row ingest.CanonicalRow) {
		if err := m.Add(row.Building, Reading{At: row.Timestamp, KWh: row.KWh}); err != nil {
			failures = append(failures, RowFailure{Index: i, Building: row.Building, Err: err})
		}
	})
	return failures
}

// Block returns the block for building.
func (m *BlockManager) Block(building string) (*Block, bool) {
	block, ok := m.blocks[building]
	return block, ok
}

// Blocks returns all blocks ordered by building name.
func (m *BlockManager) Blocks() []*Block {
	names := make([]string, 0, len(m.blocks))
	for name := range m.blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Block, 0, len(names))
	for _, name := range names {
		out = append(out, m.blocks[name])
	}
	return out
}

// Summarize returns one total/peak row per building, ordered by building.
func (m *BlockManager) Summarize() []BlockSummary {
	blocks := m.Blocks()
	out := make([]BlockSummary, 0, len(blocks))
	for _, block := range blocks {
		row := BlockSummary{Building: block.Name(), TotalKWh: block.Total()}
		if peak, ok := block.Peak(); ok {
			row.PeakTime = peak.At
			row.PeakKWh = peak.KWh
			row.HasPeak = true
		}
		out = append(out, row)
	}
	return out
}
