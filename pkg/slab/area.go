// Package slab provides depth priors derived from subducting-slab
// geometry. A slab model is sampled on latitude/longitude grids and
// organized into a three-level spatial index (area, row, segment) so
// a query location resolves to its bracketing samples in constant
// time; depths are then interpolated bilinearly with graceful
// degradation as sampled corners run out. Oversampled tilted-slab
// input is first condensed by the Regridder.
package slab

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/s2"

	"bayesdepth/internal/models"
	"bayesdepth/pkg/config"
	"bayesdepth/pkg/interpolation"
)

// Segment is a maximal gap-free run of slab samples along one row,
// covering the longitude interval from half a grid increment before
// its first sample to half an increment past its last. Coverage is
// measured eastward from the first sample, so a run straddling the
// 0/360 seam stays one contiguous segment.
type Segment struct {
	inc    float64
	points []models.SlabPoint
}

// span returns the eastward longitude extent from the first sample to
// the last.
func (s *Segment) span() float64 {
	return wrapColon(s.points[len(s.points)-1].Colon - s.points[0].Colon)
}

// Contains reports whether a canonical longitude falls inside the
// segment's coverage.
func (s *Segment) Contains(colon float64) bool {
	rel := wrapColon(colon - s.points[0].Colon + s.inc/2)
	return rel < s.span()+s.inc
}

// index truncates a query longitude onto the sample grid: the bin
// centered on each sample, counted eastward from the first.
func (s *Segment) index(colon float64) int {
	i := int(wrapColon(colon-s.points[0].Colon+s.inc/2) / s.inc)
	if i > len(s.points)-1 {
		i = len(s.points) - 1
	}
	return i
}

// Row is one sampled colatitude of an area: zero or more disjoint
// segments. A row without segments is a dummy inserted by gap filling
// so row indices stay derivable by arithmetic; dummies never match.
type Row struct {
	colat    float64
	segments []*Segment
}

// Empty reports whether the row is a gap-filling dummy.
func (r *Row) Empty() bool { return len(r.segments) == 0 }

// find locates the segment and bracketing sample for a longitude.
func (r *Row) find(colon float64) (seg, pt int, ok bool) {
	for i, s := range r.segments {
		if s.Contains(colon) {
			return i, s.index(colon), true
		}
	}
	return 0, 0, false
}

// Match is the result of a find step, threaded explicitly into the
// fetch step. Carrying the indices in a value rather than in fields
// on the area keeps concurrent queries on one area safe.
type Match struct {
	// Row is the matched row index within the area.
	Row int

	// Seg is the matched segment index within the row.
	Seg int

	// Point is the bracketing sample index within the segment.
	Point int
}

// Area is one slab patch: an ordered row sequence at uniform
// colatitude spacing under a geographic bounding rectangle. Areas are
// disjoint by construction; overturned or stacked slabs appear as
// multiple areas covering the same surface location.
type Area struct {
	cfg        *config.Config
	rowBase    float64
	rowSpacing float64
	lonSpacing float64
	rows       []*Row
	bound      s2.Rect
}

// BuildArea assembles an area from slab samples on a regular grid
// with the given nominal spacings. Depth signs are normalized
// positive down and each triplet reordered shallow-to-deep. Rows
// missing between sampled colatitudes are filled with dummies, and
// runs separated by longitude gaps become separate segments.
func BuildArea(cfg *config.Config, points []models.SlabPoint, latSpacing, lonSpacing float64) (*Area, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("slab area has no samples")
	}
	if latSpacing <= 0 || lonSpacing <= 0 {
		return nil, fmt.Errorf("slab grid spacing must be positive, got %f x %f",
			latSpacing, lonSpacing)
	}

	normalized := make([]models.SlabPoint, len(points))
	for i, p := range points {
		p.Depth = normalizeTriplet(p.Depth)
		normalized[i] = p
	}

	// Group samples into rows by colatitude.
	sort.Slice(normalized, func(i, j int) bool {
		if normalized[i].Colat != normalized[j].Colat {
			return normalized[i].Colat < normalized[j].Colat
		}
		return normalized[i].Colon < normalized[j].Colon
	})

	a := &Area{
		cfg:        cfg,
		rowBase:    normalized[0].Colat,
		rowSpacing: latSpacing,
		lonSpacing: lonSpacing,
		bound:      s2.EmptyRect(),
	}

	var rowPts []models.SlabPoint
	for i, p := range normalized {
		rowPts = append(rowPts, p)
		last := i == len(normalized)-1
		if !last && normalized[i+1].Colat == p.Colat {
			continue
		}
		a.appendRow(rowPts)
		rowPts = nil
	}

	for _, p := range normalized {
		a.grow(p)
	}

	return a, nil
}

// appendRow adds a sampled row, first inserting dummy rows for any
// skipped colatitudes so that (colat - rowBase) / rowSpacing remains
// a valid row index.
func (a *Area) appendRow(pts []models.SlabPoint) {
	colat := pts[0].Colat

	for len(a.rows) > 0 {
		nextColat := a.rowBase + float64(len(a.rows))*a.rowSpacing
		if colat-nextColat <= a.rowSpacing/2 {
			break
		}
		a.rows = append(a.rows, &Row{colat: nextColat})
	}

	row := &Row{colat: colat}
	var seg *Segment
	for i, p := range pts {
		if seg != nil && p.Colon-pts[i-1].Colon > 1.5*a.lonSpacing {
			seg = nil
		}
		if seg == nil {
			seg = &Segment{inc: a.lonSpacing}
			row.segments = append(row.segments, seg)
		}
		seg.points = append(seg.points, p)
	}

	// Samples sorted by longitude split a seam-straddling run into a
	// leading and a trailing segment; rejoin them across the seam, the
	// trailing samples first so the point order runs eastward.
	if n := len(row.segments); n > 1 {
		first, last := row.segments[0], row.segments[n-1]
		gap := wrapColon(first.points[0].Colon - last.points[len(last.points)-1].Colon)
		if gap <= 1.5*a.lonSpacing {
			last.points = append(last.points, first.points...)
			row.segments = row.segments[1:]
		}
	}

	a.rows = append(a.rows, row)
}

// grow expands the bounding rectangle to cover a sample plus half a
// grid cell of margin on each side. s2 rectangles close correctly
// over the antimeridian, which dateline-straddling slabs require.
func (a *Area) grow(p models.SlabPoint) {
	for _, dlat := range []float64{-a.rowSpacing / 2, a.rowSpacing / 2} {
		for _, dlon := range []float64{-a.lonSpacing / 2, a.lonSpacing / 2} {
			a.bound = a.bound.AddPoint(latLng(p.Colat+dlat, p.Colon+dlon))
		}
	}
}

// latLng converts canonical coordinates to an s2 LatLng, folding the
// [0, 360) longitude band into the [-180, 180] range s2 requires.
func latLng(colat, colon float64) s2.LatLng {
	if colon > 180 {
		colon -= 360
	}
	return s2.LatLngFromDegrees(90-colat, colon)
}

// RowCount returns the number of rows including dummies.
func (a *Area) RowCount() int { return len(a.rows) }

// RowEmpty reports whether a row is a gap-filling dummy.
func (a *Area) RowEmpty(row int) bool { return a.rows[row].Empty() }

// Contains reports whether a canonical location falls inside the
// area's bounding rectangle.
func (a *Area) Contains(colat, colon float64) bool {
	return a.bound.ContainsLatLng(latLng(colat, colon))
}

// Find resolves a location to its bracketing sample. The candidate
// row follows from row-index arithmetic; on a segment miss the next
// row is also tried, which absorbs the one-row offsets narrow tilted
// slabs produce. Dummy rows never match and never forward to the
// next row.
func (a *Area) Find(colat, colon float64) (Match, bool) {
	r := int((colat - a.rowBase) / a.rowSpacing)
	if r < 0 || r >= len(a.rows) {
		return Match{}, false
	}

	row := a.rows[r]
	if row.Empty() {
		return Match{}, false
	}

	if seg, pt, ok := row.find(colon); ok {
		return Match{Row: r, Seg: seg, Point: pt}, true
	}

	if r+1 < len(a.rows) && !a.rows[r+1].Empty() {
		if seg, pt, ok := a.rows[r+1].find(colon); ok {
			return Match{Row: r + 1, Seg: seg, Point: pt}, true
		}
	}

	return Match{}, false
}

// Depth interpolates the depth triplet at a location from the match
// produced by Find. Up to four corner samples are fetched: the
// bracketing sample and its eastern neighbor from the matched row,
// and the aligned pair from the next row when one exists. The
// interpolation then cascades on the number of absent corners, per
// depth channel, widening the bounds as support thins.
func (a *Area) Depth(colat, colon float64, m Match) (models.SlabDepth, bool) {
	row := a.rows[m.Row]
	seg := row.segments[m.Seg]

	// Corner order contract: origin, +x (east), +y (next row),
	// +x+y.
	corners := [4]*models.SlabPoint{}
	corners[0] = &seg.points[m.Point]
	if m.Point+1 < len(seg.points) {
		corners[1] = &seg.points[m.Point+1]
	}

	a.fetchNextRow(m, colon, &corners)

	query := models.GeographicPoint{Colat: colat, Colon: colon}

	absent := 0
	for _, c := range corners {
		if c == nil {
			absent++
		}
	}

	var d models.SlabDepth
	switch absent {
	case 0:
		d = models.SlabDepth{
			Lower:  a.corners4(corners, query, func(s models.SlabDepth) float64 { return s.Lower }),
			Center: a.corners4(corners, query, func(s models.SlabDepth) float64 { return s.Center }),
			Upper:  a.corners4(corners, query, func(s models.SlabDepth) float64 { return s.Upper }),
		}
	case 1:
		d = models.SlabDepth{
			Lower:  a.corners3(corners, query, func(s models.SlabDepth) float64 { return s.Lower }),
			Center: a.corners3(corners, query, func(s models.SlabDepth) float64 { return s.Center }),
			Upper:  a.corners3(corners, query, func(s models.SlabDepth) float64 { return s.Upper }),
		}
	case 2:
		d = models.SlabDepth{
			Lower:  a.corners2(corners, query, func(s models.SlabDepth) float64 { return s.Lower }),
			Center: a.corners2(corners, query, func(s models.SlabDepth) float64 { return s.Center }),
			Upper:  a.corners2(corners, query, func(s models.SlabDepth) float64 { return s.Upper }),
		}
		d = widen(d, a.cfg.Slab.PartialWiden)
	case 3:
		d = corners[0].Depth
		d = widen(d, a.cfg.Slab.LoneWiden)
	default:
		return models.SlabDepth{}, false
	}

	return a.sanitize(d), true
}

// fetchNextRow fetches the corner pair from the row below the match.
// Narrow tilted slabs may bracket the query one grid step off in the
// second row; fetched samples are therefore placed into corner slots
// by their longitude offset from the origin corner, so the
// non-corresponding fetch is dropped and the aligned one lands in its
// proper slot.
func (a *Area) fetchNextRow(m Match, colon float64, corners *[4]*models.SlabPoint) {
	r2 := m.Row + 1
	if r2 >= len(a.rows) || a.rows[r2].Empty() {
		return
	}

	si, pi, ok := a.rows[r2].find(colon)
	if !ok {
		return
	}
	seg2 := a.rows[r2].segments[si]

	lon0 := corners[0].Colon
	place := func(p *models.SlabPoint) {
		d := wrapColon(p.Colon - lon0)
		if d > 180 {
			d -= 360
		}
		switch int(math.Round(d / a.lonSpacing)) {
		case 0:
			corners[2] = p
		case 1:
			corners[3] = p
		}
	}

	place(&seg2.points[pi])
	if pi+1 < len(seg2.points) {
		place(&seg2.points[pi+1])
	}
}

// corners4 evaluates the bilinear surface through all four corners.
func (a *Area) corners4(c [4]*models.SlabPoint, q models.GeographicPoint, pick func(models.SlabDepth) float64) float64 {
	return interpolation.ThreeD(
		cornerSample(c[0], q, pick),
		cornerSample(c[1], q, pick),
		cornerSample(c[2], q, pick),
		cornerSample(c[3], q, pick),
		0, 0)
}

// corners3 fits a plane through the three present corners.
func (a *Area) corners3(c [4]*models.SlabPoint, q models.GeographicPoint, pick func(models.SlabDepth) float64) float64 {
	present := make([]interpolation.Sample, 0, 3)
	for _, p := range c {
		if p != nil {
			present = append(present, cornerSample(p, q, pick))
		}
	}
	return interpolation.TwoD(present[0], present[1], present[2], 0, 0)
}

// corners2 interpolates linearly between the two present corners.
func (a *Area) corners2(c [4]*models.SlabPoint, q models.GeographicPoint, pick func(models.SlabDepth) float64) float64 {
	present := make([]interpolation.Sample, 0, 2)
	for _, p := range c {
		if p != nil {
			present = append(present, cornerSample(p, q, pick))
		}
	}
	return interpolation.OneD(present[0], present[1], 0, 0)
}

// cornerSample projects a corner into the query-centered planar frame
// for one depth channel.
func cornerSample(p *models.SlabPoint, q models.GeographicPoint, pick func(models.SlabDepth) float64) interpolation.Sample {
	x, y := p.Point().LocalXY(q)
	return interpolation.Sample{X: x, Y: y, V: pick(p.Depth)}
}

// widen pushes the lower bound shallower and the upper bound deeper
// by the given fraction of each center-to-bound gap, compensating for
// thin interpolation support.
func widen(d models.SlabDepth, frac float64) models.SlabDepth {
	d.Lower -= frac * d.LowerGap()
	d.Upper += frac * d.UpperGap()
	return d
}

// sanitize restores the triplet invariants after interpolation and
// widening: depths inside the window and bounds bracketing the
// center.
func (a *Area) sanitize(d models.SlabDepth) models.SlabDepth {
	d.Lower = a.cfg.ClampDepth(d.Lower)
	d.Center = a.cfg.ClampDepth(d.Center)
	d.Upper = a.cfg.ClampDepth(d.Upper)

	if d.Lower > d.Center {
		d.Lower = d.Center
	}
	if d.Upper < d.Center {
		d.Upper = d.Center
	}
	return d
}

// wrapColon reduces a longitude difference into [0, 360).
func wrapColon(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// normalizeTriplet normalizes depth signs positive down and orders
// the triplet shallow to deep.
func normalizeTriplet(d models.SlabDepth) models.SlabDepth {
	v := []float64{math.Abs(d.Lower), math.Abs(d.Center), math.Abs(d.Upper)}
	sort.Float64s(v)
	return models.SlabDepth{Lower: v[0], Center: v[1], Upper: v[2]}
}
