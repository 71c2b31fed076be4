// Package zonestats provides depth priors derived from historically
// observed seismicity, binned on two grid layouts: the legacy fixed
// 1x1 degree (Marsden square) grid and its variable-spacing
// replacement. Both layouts are exposed through one capability
// interface so the interpolation cascade is written once.
package zonestats

import (
	"bayesdepth/internal/models"
)

// CellStats is a repaired per-cell depth statistic. Depths are in km
// positive down with Lower <= Mean <= Upper inside the configured
// depth window; Spread carries the dataset uncertainty constant.
type CellStats struct {
	// Mean is the mean historical earthquake depth in the cell.
	Mean float64

	// Lower is the shallow bound of the cell statistic.
	Lower float64

	// Upper is the deep bound of the cell statistic.
	Upper float64

	// Spread is the uncertainty attached to the cell.
	Spread float64
}

// Grid is the capability interface shared by the two zone-statistics
// layouts. Row indices run from the north pole; longitude indices are
// circular within each row. Index mapping assumes canonical
// coordinates: callers must reject NaN sentinels before indexing.
type Grid interface {
	// LatIndex snaps a colatitude to its row index.
	LatIndex(colat float64) int

	// LonIndex snaps a longitude to a sample index at the row's own
	// spacing. The two layouts deliberately snap differently: the
	// fixed grid truncates onto whole-degree cells while the variable
	// grid offsets by half a bin so indices land on sample centers.
	LonIndex(row int, colon float64) int

	// WrapLonIndex reduces a longitude index modulo the row length,
	// used when enumerating neighbors across the row seam.
	WrapLonIndex(row, idx int) int

	// ColatFromIndex returns the colatitude a row represents.
	ColatFromIndex(row int) float64

	// ColonFromIndex returns the longitude a sample represents.
	ColonFromIndex(row, idx int) float64

	// RowCount returns the number of rows.
	RowCount() int

	// RowLength returns the number of longitude samples in a row.
	RowLength(row int) int

	// Cell returns the repaired statistic of a cell, or ok=false when
	// the cell holds no data. Absence is a distinct state, never a
	// zero-valued statistic.
	Cell(row, idx int) (CellStats, bool)
}

// cellPoint returns the geographic location a grid cell represents.
func cellPoint(g Grid, row, idx int) models.GeographicPoint {
	return models.GeographicPoint{
		Colat: g.ColatFromIndex(row),
		Colon: g.ColonFromIndex(row, idx),
	}
}
