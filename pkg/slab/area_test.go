package slab

import (
	"math"
	"testing"

	"bayesdepth/internal/models"
	"bayesdepth/pkg/config"
)

// gridArea builds a fully populated rectangular slab patch over the
// given colatitude/longitude ranges at one-degree spacing, with the
// depth triplet derived from position so interpolation errors are
// visible.
func gridArea(t *testing.T, colat0, colat1, colon0, colon1 float64,
	depth func(colat, colon float64) models.SlabDepth) *Area {
	t.Helper()

	var pts []models.SlabPoint
	for colat := colat0; colat <= colat1; colat++ {
		for colon := colon0; colon <= colon1; colon++ {
			pts = append(pts, models.SlabPoint{
				Colat: colat,
				Colon: colon,
				Depth: depth(colat, colon),
			})
		}
	}

	a, err := BuildArea(config.DefaultConfig(), pts, 1, 1)
	if err != nil {
		t.Fatalf("Failed to build slab area: %v", err)
	}
	return a
}

// flatDepth returns a position-independent triplet.
func flatDepth(d models.SlabDepth) func(float64, float64) models.SlabDepth {
	return func(float64, float64) models.SlabDepth { return d }
}

// TestExactNodeBilinear verifies that querying a fully populated grid
// exactly at an interior node takes the four-corner bilinear branch
// and returns the node's stored triplet with zero error.
func TestExactNodeBilinear(t *testing.T) {
	a := gridArea(t, 40, 44, 100, 104, func(colat, colon float64) models.SlabDepth {
		c := 2*colat + (colon - 100)
		return models.SlabDepth{Lower: c - 10, Center: c, Upper: c + 15}
	})

	m, ok := a.Find(42, 102)
	if !ok {
		t.Fatal("Interior node should be found")
	}

	d, ok := a.Depth(42, 102, m)
	if !ok {
		t.Fatal("Interior node should interpolate")
	}

	want := models.SlabDepth{Lower: 76, Center: 86, Upper: 101}
	if math.Abs(d.Lower-want.Lower) > 1e-9 ||
		math.Abs(d.Center-want.Center) > 1e-9 ||
		math.Abs(d.Upper-want.Upper) > 1e-9 {
		t.Errorf("Node query should return the stored triplet %+v, got %+v", want, d)
	}
}

// TestOffsetRowAlignment verifies that a second row bracketing the
// query one grid step east still contributes: the fetched samples
// land in their slots by longitude offset, leaving the three-point
// fit with unwidened bounds.
func TestOffsetRowAlignment(t *testing.T) {
	triplet := models.SlabDepth{Lower: 40, Center: 50, Upper: 70}
	pts := []models.SlabPoint{
		{Colat: 50, Colon: 100, Depth: triplet},
		{Colat: 50, Colon: 101, Depth: triplet},
		{Colat: 51, Colon: 101, Depth: triplet},
		{Colat: 51, Colon: 102, Depth: triplet},
	}
	a, err := BuildArea(config.DefaultConfig(), pts, 1, 1)
	if err != nil {
		t.Fatalf("Failed to build slab area: %v", err)
	}

	m, ok := a.Find(50.4, 100.6)
	if !ok {
		t.Fatal("Query should bracket onto the first row")
	}

	d, ok := a.Depth(50.4, 100.6, m)
	if !ok {
		t.Fatal("Expected an interpolated triplet")
	}

	// Three corners survive, so the bounds pass through unwidened.
	if math.Abs(d.Center-50) > 1e-9 || math.Abs(d.Lower-40) > 1e-9 || math.Abs(d.Upper-70) > 1e-9 {
		t.Errorf("Three-corner fit should leave the uniform triplet intact, got %+v", d)
	}
}

// TestTwoCornerWidening verifies the two-corner branch widens each
// bound by half its center-to-bound gap.
func TestTwoCornerWidening(t *testing.T) {
	triplet := models.SlabDepth{Lower: 40, Center: 50, Upper: 70}
	pts := []models.SlabPoint{
		{Colat: 50, Colon: 100, Depth: triplet},
		{Colat: 51, Colon: 100, Depth: triplet},
	}
	a, err := BuildArea(config.DefaultConfig(), pts, 1, 1)
	if err != nil {
		t.Fatalf("Failed to build slab area: %v", err)
	}

	m, ok := a.Find(50.2, 100.1)
	if !ok {
		t.Fatal("Query should bracket onto the lone column")
	}

	d, ok := a.Depth(50.2, 100.1, m)
	if !ok {
		t.Fatal("Expected an interpolated triplet")
	}

	if math.Abs(d.Center-50) > 1e-9 {
		t.Errorf("Expected center 50, got %f", d.Center)
	}
	if math.Abs(d.Lower-35) > 1e-9 || math.Abs(d.Upper-80) > 1e-9 {
		t.Errorf("Expected bounds widened to [35, 80], got [%f, %f]", d.Lower, d.Upper)
	}
}

// TestLoneCornerWidening verifies the single-corner branch passes the
// triplet through with bounds widened by the full gap.
func TestLoneCornerWidening(t *testing.T) {
	pts := []models.SlabPoint{
		{Colat: 60, Colon: 200, Depth: models.SlabDepth{Lower: 40, Center: 50, Upper: 70}},
	}
	a, err := BuildArea(config.DefaultConfig(), pts, 1, 1)
	if err != nil {
		t.Fatalf("Failed to build slab area: %v", err)
	}

	m, ok := a.Find(60.1, 200.2)
	if !ok {
		t.Fatal("Query should bracket onto the lone sample")
	}

	d, ok := a.Depth(60.1, 200.2, m)
	if !ok {
		t.Fatal("Expected the lone triplet")
	}

	if d.Center != 50 || math.Abs(d.Lower-30) > 1e-9 || math.Abs(d.Upper-90) > 1e-9 {
		t.Errorf("Expected [30, 50, 90], got [%f, %f, %f]", d.Lower, d.Center, d.Upper)
	}
}

// TestDummyRowGapFill verifies rows sampled two increments apart get
// exactly one dummy row between them, and that queries landing in the
// dummy row report no slab.
func TestDummyRowGapFill(t *testing.T) {
	triplet := models.SlabDepth{Lower: 90, Center: 100, Upper: 120}
	var pts []models.SlabPoint
	for _, colat := range []float64{10, 12} {
		for colon := 50.0; colon <= 52; colon++ {
			pts = append(pts, models.SlabPoint{Colat: colat, Colon: colon, Depth: triplet})
		}
	}
	a, err := BuildArea(config.DefaultConfig(), pts, 1, 1)
	if err != nil {
		t.Fatalf("Failed to build slab area: %v", err)
	}

	if a.RowCount() != 3 {
		t.Fatalf("Expected 3 rows (one dummy), got %d", a.RowCount())
	}
	if a.RowEmpty(0) || !a.RowEmpty(1) || a.RowEmpty(2) {
		t.Error("Exactly the middle row should be a dummy")
	}

	// A query landing in the dummy row finds nothing.
	if _, ok := a.Find(11.4, 51); ok {
		t.Error("Dummy-row query should miss")
	}

	// Queries in the sampled rows still resolve.
	if _, ok := a.Find(10.2, 51); !ok {
		t.Error("Sampled-row query should match")
	}
}

// TestWesternHemisphereArea verifies areas east of longitude 180 are
// reachable through the registry: the bounding rectangle must contain
// the area's own interior, queried with west-negative longitudes.
func TestWesternHemisphereArea(t *testing.T) {
	triplet := models.SlabDepth{Lower: 90, Center: 100, Upper: 120}
	a := gridArea(t, 40, 44, 200, 204, flatDepth(triplet))

	if !a.Contains(42, 202) {
		t.Fatal("Area should contain its own interior")
	}

	s := NewSlabs(config.DefaultConfig())
	s.Add(a)

	// Canonical longitude 202.4 is geographic longitude -157.6.
	if !s.IsFound(90-42.3, -157.6) {
		t.Error("Registry should find the area west of the dateline")
	}
	depths := s.Depths(90-42.3, -157.6)
	if len(depths) != 1 {
		t.Fatalf("Expected one triplet under the area, got %d", len(depths))
	}
	if math.Abs(depths[0].Center-100) > 1e-9 {
		t.Errorf("Expected center 100, got %f", depths[0].Center)
	}
}

// TestSeamStraddlingRow verifies a contiguous run of samples crossing
// the 0/360 longitude seam stays one segment: queries in the seam band
// match, and interpolation draws corners from both sides of the seam.
func TestSeamStraddlingRow(t *testing.T) {
	triplet := models.SlabDepth{Lower: 40, Center: 50, Upper: 70}
	var pts []models.SlabPoint
	for _, colat := range []float64{50, 51} {
		for _, colon := range []float64{358, 359, 0, 1} {
			pts = append(pts, models.SlabPoint{Colat: colat, Colon: colon, Depth: triplet})
		}
	}
	a, err := BuildArea(config.DefaultConfig(), pts, 1, 1)
	if err != nil {
		t.Fatalf("Failed to build slab area: %v", err)
	}

	// Queries on both sides of the seam resolve.
	for _, colon := range []float64{359.7, 0.2, 358.4, 1.3} {
		m, ok := a.Find(50.3, colon)
		if !ok {
			t.Errorf("Query at colon %f should match the contiguous run", colon)
			continue
		}

		// At least three corners support every query here, so the
		// uniform triplet comes back unwidened.
		d, ok := a.Depth(50.3, colon, m)
		if !ok {
			t.Errorf("Expected an interpolated triplet at colon %f", colon)
			continue
		}
		if math.Abs(d.Center-50) > 1e-9 ||
			math.Abs(d.Lower-40) > 1e-9 || math.Abs(d.Upper-70) > 1e-9 {
			t.Errorf("Colon %f: expected unwidened [40, 50, 70], got [%f, %f, %f]",
				colon, d.Lower, d.Center, d.Upper)
		}
	}

	// Half a bin beyond either end of the run still misses.
	if _, ok := a.Find(50.3, 357.4); ok {
		t.Error("Query west of the run should miss")
	}
	if _, ok := a.Find(50.3, 1.6); ok {
		t.Error("Query east of the run should miss")
	}
}

// TestDepthSignNormalization verifies raw triplets with negative
// depths are normalized positive down and ordered shallow to deep.
func TestDepthSignNormalization(t *testing.T) {
	pts := []models.SlabPoint{
		{Colat: 20, Colon: 30, Depth: models.SlabDepth{Lower: -70, Center: -50, Upper: -40}},
	}
	a, err := BuildArea(config.DefaultConfig(), pts, 1, 1)
	if err != nil {
		t.Fatalf("Failed to build slab area: %v", err)
	}

	m, ok := a.Find(20, 30)
	if !ok {
		t.Fatal("Sample should be found")
	}
	d, _ := a.Depth(20, 30, m)
	if d.Lower > d.Center || d.Center > d.Upper || d.Lower < 0 {
		t.Errorf("Triplet not normalized: %+v", d)
	}
	if d.Center != 50 {
		t.Errorf("Expected center 50, got %f", d.Center)
	}
}

// TestRegistryAscendingDepths verifies stacked areas at one location
// return triplets sorted ascending by center depth.
func TestRegistryAscendingDepths(t *testing.T) {
	shallow := gridArea(t, 40, 44, 100, 104,
		flatDepth(models.SlabDepth{Lower: 20, Center: 30, Upper: 45}))
	deep := gridArea(t, 40, 44, 100, 104,
		flatDepth(models.SlabDepth{Lower: 250, Center: 300, Upper: 360}))

	s := NewSlabs(config.DefaultConfig())
	// Register deepest first to prove the sort does the ordering.
	s.Add(deep)
	s.Add(shallow)

	depths := s.Depths(90-41.3, 102.4)
	if len(depths) != 2 {
		t.Fatalf("Expected 2 stacked results, got %d", len(depths))
	}
	if depths[0].Center >= depths[1].Center {
		t.Errorf("Results not ascending by center depth: %f then %f",
			depths[0].Center, depths[1].Center)
	}
}

// TestRegistryMissesOutside verifies locations outside every bounding
// rectangle return no results and invalid coordinates are rejected.
func TestRegistryMissesOutside(t *testing.T) {
	s := NewSlabs(config.DefaultConfig())
	s.Add(gridArea(t, 40, 44, 100, 104,
		flatDepth(models.SlabDepth{Lower: 20, Center: 30, Upper: 45})))

	if s.IsFound(0, 0) {
		t.Error("Location far outside the area should miss")
	}
	if got := s.Depths(0, 0); len(got) != 0 {
		t.Errorf("Expected no depths outside the area, got %d", len(got))
	}
	if s.IsFound(200, 10) {
		t.Error("Invalid latitude should miss")
	}
}
