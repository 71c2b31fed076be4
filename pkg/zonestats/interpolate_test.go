package zonestats

import (
	"math"
	"testing"

	"bayesdepth/internal/models"
	"bayesdepth/pkg/config"
)

// TestEstimateThreePointPlane verifies that with populated cells on
// two rows the three-point planar fit is taken: a uniform depth field
// is reproduced exactly and the spread carries no inflation.
func TestEstimateThreePointPlane(t *testing.T) {
	cells := map[[2]int]CellAggregate{}
	for _, row := range []int{45, 46} {
		for _, col := range []int{99, 100, 101} {
			cells[[2]int{row, col}] = CellAggregate{Mean: 30, Min: 20, Max: 40}
		}
	}
	z := NewInterpolator(config.DefaultConfig(), fixedGridWith(t, cells))

	// Colatitude 45.9 sits between the row centers 45.5 and 46.5, so
	// the three nearest candidates span both rows.
	est, ok := z.Estimate(90-45.9, 100.5)
	if !ok {
		t.Fatal("Expected an estimate over populated cells")
	}
	if math.Abs(est.Depth-30) > 1e-9 {
		t.Errorf("Uniform field should interpolate exactly: expected 30, got %f", est.Depth)
	}
	if est.Spread != 75 {
		t.Errorf("Three-point fit should not inflate the spread: expected 75, got %f", est.Spread)
	}
	if est.Source != models.SourceZoneInterp {
		t.Errorf("Expected zone-interp provenance, got %v", est.Source)
	}
}

// TestCollinearCandidates verifies that three equal-colatitude
// candidates reduce to the two-point path instead of failing; the
// inflated spread pins the branch. No farther candidate is
// substituted for the dropped one.
func TestCollinearCandidates(t *testing.T) {
	cells := map[[2]int]CellAggregate{}
	for _, col := range []int{99, 100, 101} {
		cells[[2]int{45, col}] = CellAggregate{Mean: 50, Min: 40, Max: 60}
	}
	z := NewInterpolator(config.DefaultConfig(), fixedGridWith(t, cells))

	// Query exactly on the row-center colatitude: the three nearest
	// candidates are all from row 45.
	est, ok := z.Estimate(90-45.5, 100.5)
	if !ok {
		t.Fatal("Expected an estimate from the collinear row")
	}
	if math.Abs(est.Depth-50) > 1e-9 {
		t.Errorf("Expected depth 50, got %f", est.Depth)
	}
	if math.Abs(est.Spread-75*1.5) > 1e-9 {
		t.Errorf("Two-point path should inflate spread to 112.5, got %f", est.Spread)
	}
}

// TestDeepRegimeRejection verifies that in deep structure a candidate
// far shallower than the deepest one is discarded as overriding-plate
// contamination.
func TestDeepRegimeRejection(t *testing.T) {
	cells := map[[2]int]CellAggregate{
		{45, 100}: {Mean: 600, Min: 550, Max: 650},
		{46, 100}: {Mean: 600, Min: 550, Max: 650},
		{45, 99}:  {Mean: 100, Min: 50, Max: 150},
		{45, 101}: {Mean: 100, Min: 50, Max: 150},
	}
	z := NewInterpolator(config.DefaultConfig(), fixedGridWith(t, cells))

	est, ok := z.Estimate(90-45.9, 100.5)
	if !ok {
		t.Fatal("Expected an estimate")
	}
	if math.Abs(est.Depth-600) > 1e-9 {
		t.Errorf("Shallow outlier should be rejected: expected 600, got %f", est.Depth)
	}
	if math.Abs(est.Spread-75*1.5) > 1e-9 {
		t.Errorf("Rejection should leave two points and inflate spread: got %f", est.Spread)
	}
}

// TestSinglePointPassthrough verifies the one-point branch passes the
// lone statistic through with doubled spread.
func TestSinglePointPassthrough(t *testing.T) {
	cells := map[[2]int]CellAggregate{
		{45, 100}: {Mean: 120, Min: 80, Max: 160},
	}
	z := NewInterpolator(config.DefaultConfig(), fixedGridWith(t, cells))

	est, ok := z.Estimate(90-45.5, 100.5)
	if !ok {
		t.Fatal("Expected the lone cell to supply an estimate")
	}
	if est.Depth != 120 {
		t.Errorf("Expected verbatim depth 120, got %f", est.Depth)
	}
	if math.Abs(est.Spread-150) > 1e-9 {
		t.Errorf("One-point path should double the spread to 150, got %f", est.Spread)
	}
}

// TestEstimateNoData verifies exhausting the cascade yields a
// distinct no-data result, not a NaN estimate.
func TestEstimateNoData(t *testing.T) {
	z := NewInterpolator(config.DefaultConfig(), fixedGridWith(t, nil))

	if est, ok := z.Estimate(10, 10); ok {
		t.Errorf("Empty grid should yield no data, got %+v", est)
	}
}

// TestEstimateInvalidCoordinates verifies out-of-range coordinates
// propagate as no data rather than panicking or returning NaN.
func TestEstimateInvalidCoordinates(t *testing.T) {
	z := NewInterpolator(config.DefaultConfig(), fixedGridWith(t, nil))

	if _, ok := z.Estimate(100, 10); ok {
		t.Error("Latitude beyond 90 should yield no data")
	}
	if _, ok := z.Estimate(10, 500); ok {
		t.Error("Longitude beyond 360 should yield no data")
	}
	if _, ok := z.CellEstimate(math.NaN(), 10); ok {
		t.Error("NaN latitude should yield no data")
	}
}

// TestEstimateStaysInDepthWindow verifies interpolated depths never
// leave the configured window even with extreme cell statistics.
func TestEstimateStaysInDepthWindow(t *testing.T) {
	cfg := config.DefaultConfig()
	cells := map[[2]int]CellAggregate{}
	for _, row := range []int{45, 46} {
		for _, col := range []int{99, 100, 101} {
			cells[[2]int{row, col}] = CellAggregate{Mean: 690, Min: 600, Max: 800}
		}
	}
	z := NewInterpolator(cfg, fixedGridWith(t, cells))

	for lon := 99.0; lon <= 102.0; lon += 0.3 {
		est, ok := z.Estimate(90-45.9, lon)
		if !ok {
			continue
		}
		if est.Depth < cfg.Depth.Min || est.Depth > cfg.Depth.Max {
			t.Errorf("Depth %f at lon %f escapes the window [%f, %f]",
				est.Depth, lon, cfg.Depth.Min, cfg.Depth.Max)
		}
		if est.Upper > cfg.Depth.Max || est.Lower < cfg.Depth.Min {
			t.Errorf("Bounds [%f, %f] escape the window", est.Lower, est.Upper)
		}
	}
}

// TestCellEstimate verifies the raw enclosing-cell lookup.
func TestCellEstimate(t *testing.T) {
	cells := map[[2]int]CellAggregate{
		{45, 100}: {Mean: 35, Min: 20, Max: 55},
	}
	z := NewInterpolator(config.DefaultConfig(), fixedGridWith(t, cells))

	est, ok := z.CellEstimate(90-45.5, 100.5)
	if !ok {
		t.Fatal("Expected the enclosing cell statistic")
	}
	if est.Depth != 35 || est.Lower != 20 || est.Upper != 55 {
		t.Errorf("Expected 35 in [20, 55], got %f in [%f, %f]",
			est.Depth, est.Lower, est.Upper)
	}
	if est.Source != models.SourceZoneCell {
		t.Errorf("Expected zone-cell provenance, got %v", est.Source)
	}

	if _, ok := z.CellEstimate(90-45.5, 250.5); ok {
		t.Error("Empty cell should yield no data")
	}
}
