package slab

import (
	"math"
	"testing"

	"bayesdepth/internal/models"
	"bayesdepth/pkg/config"
)

// TestRegridMergesBuckets verifies samples pooled into one coarse
// cell merge into a single summary triplet at the cell center: mean
// earthquake depth, extreme bounds.
func TestRegridMergesBuckets(t *testing.T) {
	r := NewRegridder(0.5, 0.5)
	r.Add(
		models.SlabPoint{Colat: 2.1, Colon: 3.1,
			Depth: models.SlabDepth{Lower: 5, Center: 10, Upper: 20}},
		models.SlabPoint{Colat: 2.3, Colon: 3.4,
			Depth: models.SlabDepth{Lower: 8, Center: 30, Upper: 40}},
	)

	pts := r.Points()
	if len(pts) != 1 {
		t.Fatalf("Expected one merged sample, got %d", len(pts))
	}

	p := pts[0]
	if p.Colat != 2.25 || p.Colon != 3.25 {
		t.Errorf("Expected cell center (2.25, 3.25), got (%f, %f)", p.Colat, p.Colon)
	}
	if math.Abs(p.Depth.Center-20) > 1e-9 {
		t.Errorf("Expected mean center 20, got %f", p.Depth.Center)
	}
	if p.Depth.Lower != 5 || p.Depth.Upper != 40 {
		t.Errorf("Expected extreme bounds [5, 40], got [%f, %f]", p.Depth.Lower, p.Depth.Upper)
	}
}

// TestRegridSeparatesCells verifies samples in different coarse cells
// stay separate and come out in row-major order.
func TestRegridSeparatesCells(t *testing.T) {
	r := NewRegridder(0.5, 0.5)
	r.Add(
		models.SlabPoint{Colat: 3.1, Colon: 7.1,
			Depth: models.SlabDepth{Lower: 90, Center: 100, Upper: 120}},
		models.SlabPoint{Colat: 2.1, Colon: 7.6,
			Depth: models.SlabDepth{Lower: 40, Center: 50, Upper: 60}},
		models.SlabPoint{Colat: 2.1, Colon: 7.1,
			Depth: models.SlabDepth{Lower: 10, Center: 20, Upper: 30}},
	)

	pts := r.Points()
	if len(pts) != 3 {
		t.Fatalf("Expected three cells, got %d", len(pts))
	}

	for i := 1; i < len(pts); i++ {
		prev, cur := pts[i-1], pts[i]
		if cur.Colat < prev.Colat ||
			(cur.Colat == prev.Colat && cur.Colon < prev.Colon) {
			t.Errorf("Samples not in row-major order at %d: %+v after %+v", i, cur, prev)
		}
	}

	// Regridded output feeds a normal area builder.
	if _, err := BuildArea(config.DefaultConfig(), pts, 0.5, 0.5); err != nil {
		t.Errorf("Regridded samples should build an area: %v", err)
	}
}
