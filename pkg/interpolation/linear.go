// Package interpolation provides the stateless linear kernels shared
// by the zone-statistics and slab-geometry interpolators: line, plane,
// and bilinear-surface evaluation over a handful of planar samples,
// plus 2D line intersection. All functions are pure; the callers own
// candidate selection and degradation policy.
package interpolation

import (
	"math"
)

// Sample couples a planar coordinate with the value observed there.
// Coordinates are in the caller's local earth-flattened frame.
type Sample struct {
	// X is the local east coordinate in km.
	X float64

	// Y is the local south coordinate in km.
	Y float64

	// V is the value observed at (X, Y).
	V float64
}

// OneD interpolates linearly between two samples, measuring position
// along whichever axis separates the samples more. Using the wider
// axis keeps the slope denominator well away from zero when the two
// samples nearly share one coordinate.
func OneD(a, b Sample, qx, qy float64) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if math.Abs(dx) >= math.Abs(dy) {
		if dx == 0 {
			// Coincident samples; either value serves.
			return (a.V + b.V) / 2
		}
		return a.V + (b.V-a.V)*(qx-a.X)/dx
	}
	return a.V + (b.V-a.V)*(qy-a.Y)/dy
}

// TwoD fits the unique plane through three samples and evaluates it at
// (qx, qy). The plane gradient has two algebraically equivalent closed
// forms, pivoted on the first or the second sample; the form whose
// area denominator has the larger magnitude is used so that nearly
// degenerate triangles lose as little precision as possible.
func TwoD(a, b, c Sample, qx, qy float64) float64 {
	// Pivot on a.
	denA := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
	// Pivot on b.
	denB := (c.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(c.Y-b.Y)

	if math.Abs(denA) >= math.Abs(denB) {
		if denA == 0 {
			// Collinear support; fall back to the two most separated
			// samples.
			return OneD(a, c, qx, qy)
		}
		gx := ((b.V-a.V)*(c.Y-a.Y) - (c.V-a.V)*(b.Y-a.Y)) / denA
		gy := ((c.V-a.V)*(b.X-a.X) - (b.V-a.V)*(c.X-a.X)) / denA
		return a.V + gx*(qx-a.X) + gy*(qy-a.Y)
	}

	gx := ((c.V-b.V)*(a.Y-b.Y) - (a.V-b.V)*(c.Y-b.Y)) / denB
	gy := ((a.V-b.V)*(c.X-b.X) - (c.V-b.V)*(a.X-b.X)) / denB
	return b.V + gx*(qx-b.X) + gy*(qy-b.Y)
}

// ThreeD evaluates the non-separable bilinear surface through four
// corner samples at (qx, qy). The corner order is fixed: origin, +x,
// +y, +x+y. The surface is the product of two linear functions, so it
// reproduces each corner value exactly and varies linearly along each
// grid direction.
func ThreeD(origin, px, py, pxy Sample, qx, qy float64) float64 {
	sx := px.X - origin.X
	sy := py.Y - origin.Y

	if sx == 0 || sy == 0 {
		// Degenerate cell; collapse onto the diagonal.
		return OneD(origin, pxy, qx, qy)
	}

	s := (qx - origin.X) / sx
	t := (qy - origin.Y) / sy

	return origin.V*(1-s)*(1-t) + px.V*s*(1-t) + py.V*(1-s)*t + pxy.V*s*t
}

// Line is a 2D line in point-slope form. Vertical lines cannot carry a
// finite slope and are flagged instead.
type Line struct {
	// X, Y is a point on the line.
	X, Y float64

	// Slope is dy/dx; meaningless when Vertical is set.
	Slope float64

	// Vertical marks a line of constant X.
	Vertical bool
}

// LineThrough returns the line through two points.
func LineThrough(x1, y1, x2, y2 float64) Line {
	if x1 == x2 {
		return Line{X: x1, Y: y1, Vertical: true}
	}
	return Line{X: x1, Y: y1, Slope: (y2 - y1) / (x2 - x1)}
}

// PerpendicularAt returns the line through (x, y) perpendicular to l.
func PerpendicularAt(l Line, x, y float64) Line {
	if l.Vertical {
		// Perpendicular to a vertical line is horizontal.
		return Line{X: x, Y: y, Slope: 0}
	}
	if l.Slope == 0 {
		return Line{X: x, Y: y, Vertical: true}
	}
	return Line{X: x, Y: y, Slope: -1 / l.Slope}
}

// Intersect crosses two lines, handling the vertical and horizontal
// degenerate slopes explicitly. ok is false for parallel lines.
func Intersect(l1, l2 Line) (x, y float64, ok bool) {
	switch {
	case l1.Vertical && l2.Vertical:
		return 0, 0, false
	case l1.Vertical:
		x = l1.X
		y = l2.Y + l2.Slope*(x-l2.X)
		return x, y, true
	case l2.Vertical:
		x = l2.X
		y = l1.Y + l1.Slope*(x-l1.X)
		return x, y, true
	}

	if l1.Slope == l2.Slope {
		return 0, 0, false
	}

	x = (l2.Y - l1.Y + l1.Slope*l1.X - l2.Slope*l2.X) / (l1.Slope - l2.Slope)
	y = l1.Y + l1.Slope*(x-l1.X)
	return x, y, true
}

// TwoPoint interpolates between two samples at the foot of the
// perpendicular dropped from (qx, qy) onto the line through them. This
// is the reduced-order fit used when a three-point plane cannot be
// formed: the query is projected onto the support line and the value
// interpolated along it.
func TwoPoint(a, b Sample, qx, qy float64) float64 {
	support := LineThrough(a.X, a.Y, b.X, b.Y)
	perp := PerpendicularAt(support, qx, qy)

	fx, fy, ok := Intersect(support, perp)
	if !ok {
		// Coincident samples leave the support line undefined.
		return (a.V + b.V) / 2
	}

	return OneD(a, b, fx, fy)
}
