package zonestats

import (
	"fmt"

	"bayesdepth/pkg/config"
)

// Fixed-grid dimensions: 1x1 degree Marsden squares.
const (
	fixedRows = 180
	fixedCols = 360
)

// CellAggregate is the raw per-cell statistic as supplied by the
// loader, before clipping and repair.
type CellAggregate struct {
	// Mean is the raw mean historical depth in km.
	Mean float64 `yaml:"mean"`

	// Min is the raw shallowest historical depth in km.
	Min float64 `yaml:"min"`

	// Max is the raw deepest historical depth in km.
	Max float64 `yaml:"max"`
}

// FixedGrid is the legacy 1x1 degree statistics table. Cells are
// addressed through a sparse key array (-1 marks an empty cell) into
// a compact aggregate array, mirroring the layout of the raw dataset.
type FixedGrid struct {
	cfg   *config.Config
	keys  []int32
	stats []CellAggregate
}

// NewFixedGrid wraps a sparse key table and its aggregate array. The
// key table must hold one entry per 1x1 degree cell in row-major
// order from the north pole, and every non-negative key must index
// into stats.
func NewFixedGrid(cfg *config.Config, keys []int32, stats []CellAggregate) (*FixedGrid, error) {
	if len(keys) != fixedRows*fixedCols {
		return nil, fmt.Errorf("fixed grid key table has %d entries, want %d",
			len(keys), fixedRows*fixedCols)
	}
	for i, k := range keys {
		if k >= 0 && int(k) >= len(stats) {
			return nil, fmt.Errorf("fixed grid key %d at cell %d exceeds %d statistics",
				k, i, len(stats))
		}
	}
	return &FixedGrid{cfg: cfg, keys: keys, stats: stats}, nil
}

// LatIndex truncates a colatitude onto whole-degree rows 0..179.
func (g *FixedGrid) LatIndex(colat float64) int {
	i := int(colat)
	if i > fixedRows-1 {
		i = fixedRows - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// LonIndex truncates a canonical longitude onto whole-degree cells
// 0..359. The fixed grid snaps without a half-bin offset; cells are
// degree intervals, not centered samples.
func (g *FixedGrid) LonIndex(row int, colon float64) int {
	i := int(colon)
	if i > fixedCols-1 {
		i = fixedCols - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// WrapLonIndex reduces a longitude index modulo 360.
func (g *FixedGrid) WrapLonIndex(row, idx int) int {
	return ((idx % fixedCols) + fixedCols) % fixedCols
}

// ColatFromIndex returns the cell-center colatitude of a row.
func (g *FixedGrid) ColatFromIndex(row int) float64 {
	return float64(row) + 0.5
}

// ColonFromIndex returns the cell-center longitude of a column.
func (g *FixedGrid) ColonFromIndex(row, idx int) float64 {
	return float64(idx) + 0.5
}

// RowCount returns 180.
func (g *FixedGrid) RowCount() int { return fixedRows }

// RowLength returns 360 for every row.
func (g *FixedGrid) RowLength(row int) int { return fixedCols }

// Cell looks up a cell through the sparse key table and repairs the
// aggregate. Raw statistics are clipped into the depth window; if the
// clipped ordering is inconsistent (min >= max, or the mean outside
// [min, max]) the interval is replaced by a synthetic one of one
// repair half-width against the mean, placed below the mean for
// shallow means and above it for deep ones. Corrupt source statistics
// are repaired locally, never surfaced as errors.
func (g *FixedGrid) Cell(row, idx int) (CellStats, bool) {
	if row < 0 || row >= fixedRows || idx < 0 || idx >= fixedCols {
		return CellStats{}, false
	}

	key := g.keys[row*fixedCols+idx]
	if key < 0 {
		return CellStats{}, false
	}

	raw := g.stats[key]
	mean := g.cfg.ClampDepth(raw.Mean)
	min := g.cfg.ClampDepth(raw.Min)
	max := g.cfg.ClampDepth(raw.Max)

	if min >= max || mean < min || mean > max {
		if mean < g.cfg.Zone.RepairPivot {
			min = g.cfg.ClampDepth(mean - g.cfg.Zone.RepairHalfWidth)
			max = mean
		} else {
			min = mean
			max = g.cfg.ClampDepth(mean + g.cfg.Zone.RepairHalfWidth)
		}
	}

	return CellStats{
		Mean:   mean,
		Lower:  min,
		Upper:  max,
		Spread: g.cfg.FloorSpread(g.cfg.Zone.Spread),
	}, true
}
