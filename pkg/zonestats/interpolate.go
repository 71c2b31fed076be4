package zonestats

import (
	"sort"

	"bayesdepth/internal/models"
	"bayesdepth/pkg/config"
	"bayesdepth/pkg/interpolation"
)

// Interpolator answers depth-prior queries against one zone grid,
// either as a raw enclosing-cell lookup or through the cascading
// planar interpolation over neighboring cells. It holds no per-query
// state, so one instance serves concurrent callers.
type Interpolator struct {
	cfg  *config.Config
	grid Grid
}

// NewInterpolator builds an interpolator over a grid strategy.
func NewInterpolator(cfg *config.Config, grid Grid) *Interpolator {
	return &Interpolator{cfg: cfg, grid: grid}
}

// candidate is one neighbor cell considered for interpolation,
// projected into the local planar frame centered on the query.
type candidate struct {
	loc   models.GeographicPoint
	stats CellStats
	ok    bool
	x, y  float64
	dist  float64
}

// CellEstimate returns the statistic of the enclosing cell without
// interpolation, or ok=false when the cell holds no data or the
// coordinates are invalid.
func (z *Interpolator) CellEstimate(lat, lon float64) (models.DepthEstimate, bool) {
	pt := models.Canonical(lat, lon)
	if !pt.IsValid() {
		return models.DepthEstimate{}, false
	}

	row := z.grid.LatIndex(pt.Colat)
	idx := z.grid.LonIndex(row, pt.Colon)

	stats, ok := z.grid.Cell(row, idx)
	if !ok {
		return models.DepthEstimate{}, false
	}

	return z.estimate(stats.Mean, stats.Lower, stats.Upper, stats.Spread,
		models.SourceZoneCell), true
}

// Estimate interpolates a depth prior at the query point from up to
// six neighboring cells, degrading from a three-point planar fit down
// to a single-cell passthrough as populated neighbors run out. ok is
// false when no populated cell survives, or the coordinates are
// invalid; callers then fall back to their own default prior.
func (z *Interpolator) Estimate(lat, lon float64) (models.DepthEstimate, bool) {
	pt := models.Canonical(lat, lon)
	if !pt.IsValid() {
		return models.DepthEstimate{}, false
	}

	cands := z.gatherCandidates(pt)

	// Sort by planar distance and keep the three nearest as the
	// interpolation triangle.
	sort.Slice(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	if len(cands) > 3 {
		cands = cands[:3]
	}

	// Degenerate collinearity: three cells of one row cannot span a
	// plane. Drop the third and take the two-point path. No farther
	// candidate is substituted.
	if len(cands) == 3 &&
		cands[0].loc.Colat == cands[1].loc.Colat &&
		cands[1].loc.Colat == cands[2].loc.Colat {
		cands = cands[:2]
	}

	z.rejectOutliers(cands)

	return z.cascade(cands)
}

// gatherCandidates collects the base row's enclosing cell with its two
// wrapped longitude neighbors, plus the analogous three cells of the
// adjacent row on the query's side, each annotated with its statistic
// and local planar position.
func (z *Interpolator) gatherCandidates(pt models.GeographicPoint) []candidate {
	r0 := z.grid.LatIndex(pt.Colat)
	cands := z.rowCandidates(r0, pt)

	// Draw the second row from whichever side the query sits on,
	// flipping at the first/last row boundary.
	r1 := r0 - 1
	if pt.Colat >= z.grid.ColatFromIndex(r0) {
		r1 = r0 + 1
	}
	if r1 < 0 {
		r1 = r0 + 1
	}
	if r1 > z.grid.RowCount()-1 {
		r1 = r0 - 1
	}

	if r1 >= 0 && r1 != r0 {
		cands = append(cands, z.rowCandidates(r1, pt)...)
	}

	return cands
}

// rowCandidates returns a row's enclosing cell and its two longitude
// neighbors, recomputing the longitude index at the row's own spacing.
func (z *Interpolator) rowCandidates(row int, pt models.GeographicPoint) []candidate {
	c0 := z.grid.LonIndex(row, pt.Colon)

	cands := make([]candidate, 0, 3)
	for d := -1; d <= 1; d++ {
		idx := z.grid.WrapLonIndex(row, c0+d)

		cand := candidate{loc: cellPoint(z.grid, row, idx)}
		cand.stats, cand.ok = z.grid.Cell(row, idx)
		cand.x, cand.y = cand.loc.LocalXY(pt)
		cand.dist = cand.loc.DistanceTo(pt)

		cands = append(cands, cand)
	}
	return cands
}

// rejectOutliers turns candidates inconsistent with the local depth
// structure into absences. In shallow and intermediate structure the
// candidates must cluster around the nearest one; in deep structure
// (below subduction zones) only candidates near the deepest depth are
// trusted, since shallower cells belong to the overriding plate.
func (z *Interpolator) rejectOutliers(cands []candidate) {
	deepest := 0.0
	nearestMean := 0.0
	seen := false
	for _, c := range cands {
		if !c.ok {
			continue
		}
		if !seen {
			// Candidates are sorted by distance, so the first
			// populated one is the nearest.
			nearestMean = c.stats.Mean
			seen = true
		}
		if c.stats.Mean > deepest {
			deepest = c.stats.Mean
		}
	}
	if !seen {
		return
	}

	for i := range cands {
		if !cands[i].ok {
			continue
		}
		m := cands[i].stats.Mean
		if deepest <= z.cfg.Zone.RegimeBoundary {
			if m-nearestMean > z.cfg.Zone.ShallowTolerance ||
				nearestMean-m > z.cfg.Zone.ShallowTolerance {
				cands[i].ok = false
			}
		} else if deepest-m > z.cfg.Zone.DeepTolerance {
			cands[i].ok = false
		}
	}
}

// cascade interpolates the four statistic channels (mean, lower
// bound, upper bound, spread) over the surviving candidates: a planar
// fit for three, a perpendicular-projection line fit for two with the
// spread inflated, a verbatim passthrough for one with the spread
// inflated further, and no result for none. The query sits at the
// local origin.
func (z *Interpolator) cascade(cands []candidate) (models.DepthEstimate, bool) {
	present := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if c.ok {
			present = append(present, c)
		}
	}

	channel := func(pick func(CellStats) float64) float64 {
		switch len(present) {
		case 3:
			return interpolation.TwoD(
				sampleOf(present[0], pick),
				sampleOf(present[1], pick),
				sampleOf(present[2], pick),
				0, 0)
		case 2:
			return interpolation.TwoPoint(
				sampleOf(present[0], pick),
				sampleOf(present[1], pick),
				0, 0)
		default:
			return pick(present[0].stats)
		}
	}

	switch len(present) {
	case 0:
		return models.DepthEstimate{}, false
	case 1:
		s := present[0].stats
		return z.estimate(s.Mean, s.Lower, s.Upper,
			s.Spread*z.cfg.Zone.OnePointInflation,
			models.SourceZoneInterp), true
	case 2:
		return z.estimate(
			channel(func(s CellStats) float64 { return s.Mean }),
			channel(func(s CellStats) float64 { return s.Lower }),
			channel(func(s CellStats) float64 { return s.Upper }),
			channel(func(s CellStats) float64 { return s.Spread })*z.cfg.Zone.TwoPointInflation,
			models.SourceZoneInterp), true
	default:
		return z.estimate(
			channel(func(s CellStats) float64 { return s.Mean }),
			channel(func(s CellStats) float64 { return s.Lower }),
			channel(func(s CellStats) float64 { return s.Upper }),
			channel(func(s CellStats) float64 { return s.Spread }),
			models.SourceZoneInterp), true
	}
}

// sampleOf adapts a candidate to an interpolation sample for one
// statistic channel.
func sampleOf(c candidate, pick func(CellStats) float64) interpolation.Sample {
	return interpolation.Sample{X: c.x, Y: c.y, V: pick(c.stats)}
}

// estimate assembles a DepthEstimate enforcing the dataset
// invariants: the depth inside the depth window, bounds bracketing
// the depth, and the spread at or above the floor.
func (z *Interpolator) estimate(mean, lower, upper, spread float64, src models.DepthSource) models.DepthEstimate {
	mean = z.cfg.ClampDepth(mean)
	lower = z.cfg.ClampDepth(lower)
	upper = z.cfg.ClampDepth(upper)

	if lower > mean {
		lower = mean
	}
	if upper < mean {
		upper = mean
	}

	return models.DepthEstimate{
		Depth:  mean,
		Spread: z.cfg.FloorSpread(spread),
		Lower:  lower,
		Upper:  upper,
		Source: src,
	}
}
