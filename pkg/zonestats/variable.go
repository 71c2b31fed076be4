package zonestats

import (
	"fmt"
	"math"

	"bayesdepth/pkg/config"
)

// VariableCell is one precomputed sample of the replacement grid: a
// mean depth with its own spread, both already reduced by the dataset
// producer. A nil entry in a row marks an unsampled longitude.
type VariableCell struct {
	// Mean is the mean historical depth at the sample in km.
	Mean float64 `yaml:"mean"`

	// Spread is the sample's own uncertainty in km.
	Spread float64 `yaml:"spread"`
}

// VariableGrid is the variable-spacing replacement layout: rows at a
// fixed colatitude interval, each row carrying its own longitude
// sample count and therefore its own spacing. The first and last rows
// absorb the polar caps, so latitude snapping clamps onto them rather
// than falling off the table.
type VariableGrid struct {
	cfg        *config.Config
	firstColat float64
	spacing    float64
	rows       [][]*VariableCell
}

// NewVariableGrid wraps per-row sample arrays. spacing is the uniform
// colatitude step between rows; firstColat is the colatitude of row 0.
// Every row must hold at least one sample slot.
func NewVariableGrid(cfg *config.Config, firstColat, spacing float64, rows [][]*VariableCell) (*VariableGrid, error) {
	if spacing <= 0 {
		return nil, fmt.Errorf("variable grid spacing must be positive, got %f", spacing)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("variable grid has no rows")
	}
	for i, r := range rows {
		if len(r) == 0 {
			return nil, fmt.Errorf("variable grid row %d is empty", i)
		}
	}
	return &VariableGrid{cfg: cfg, firstColat: firstColat, spacing: spacing, rows: rows}, nil
}

// LatIndex snaps a colatitude to the nearest row, clamping onto the
// boundary rows for queries poleward of the sampled band.
func (g *VariableGrid) LatIndex(colat float64) int {
	i := int(math.Round((colat - g.firstColat) / g.spacing))
	if i < 0 {
		i = 0
	}
	if i > len(g.rows)-1 {
		i = len(g.rows) - 1
	}
	return i
}

// LonIndex snaps a longitude to the nearest sample of a row. Unlike
// the fixed grid, samples sit at multiples of the row spacing, so the
// index is offset by half a bin before truncation and then reduced
// modulo the row length.
func (g *VariableGrid) LonIndex(row int, colon float64) int {
	n := len(g.rows[row])
	dlon := 360.0 / float64(n)
	return int((colon+dlon/2)/dlon) % n
}

// WrapLonIndex reduces a longitude index modulo the row length.
func (g *VariableGrid) WrapLonIndex(row, idx int) int {
	n := len(g.rows[row])
	return ((idx % n) + n) % n
}

// ColatFromIndex returns the colatitude of a row.
func (g *VariableGrid) ColatFromIndex(row int) float64 {
	return g.firstColat + float64(row)*g.spacing
}

// ColonFromIndex returns the longitude of a sample center.
func (g *VariableGrid) ColonFromIndex(row, idx int) float64 {
	return float64(idx) * 360.0 / float64(len(g.rows[row]))
}

// RowCount returns the number of rows.
func (g *VariableGrid) RowCount() int { return len(g.rows) }

// RowLength returns the sample count of a row.
func (g *VariableGrid) RowLength(row int) int { return len(g.rows[row]) }

// Cell returns a sample's precomputed mean and spread, bracketing the
// mean by one spread on each side for the bound channels. Unsampled
// longitudes report absence.
func (g *VariableGrid) Cell(row, idx int) (CellStats, bool) {
	if row < 0 || row >= len(g.rows) || idx < 0 || idx >= len(g.rows[row]) {
		return CellStats{}, false
	}

	c := g.rows[row][idx]
	if c == nil {
		return CellStats{}, false
	}

	mean := g.cfg.ClampDepth(c.Mean)
	spread := g.cfg.FloorSpread(c.Spread)

	return CellStats{
		Mean:   mean,
		Lower:  g.cfg.ClampDepth(mean - spread),
		Upper:  g.cfg.ClampDepth(mean + spread),
		Spread: spread,
	}, true
}
