package models

import (
	"math"
)

// DegToKm is the surface length of one degree of a great circle in
// kilometers, used by the local earth-flattening projection.
const DegToKm = 111.19

// GeographicPoint is a location in canonical coordinates: colatitude
// measured in degrees from the north pole and east longitude
// normalized into [0, 360). Out-of-range input coordinates are carried
// as NaN so that invalid queries propagate as "no data" instead of
// panicking inside index arithmetic.
type GeographicPoint struct {
	// Colat is the geographic colatitude (90 - latitude) in degrees.
	// Valid values lie in [0, 180]; NaN marks an invalid latitude.
	Colat float64

	// Colon is the east longitude in degrees normalized into [0, 360).
	// NaN marks an invalid longitude.
	Colon float64
}

// Canonical converts a geographic latitude/longitude pair into
// canonical coordinates. Latitudes outside [-90, 90] and longitudes
// outside [-180, 360] produce NaN components; callers must check
// IsValid before using the point for grid indexing.
func Canonical(lat, lon float64) GeographicPoint {
	p := GeographicPoint{Colat: math.NaN(), Colon: math.NaN()}

	if lat >= -90 && lat <= 90 {
		p.Colat = 90 - lat
	}

	if lon >= -180 && lon <= 360 {
		colon := lon
		if colon < 0 {
			colon += 360
		}
		if colon >= 360 {
			colon -= 360
		}
		p.Colon = colon
	}

	return p
}

// IsValid reports whether both coordinates survived canonicalization.
func (p GeographicPoint) IsValid() bool {
	return !math.IsNaN(p.Colat) && !math.IsNaN(p.Colon)
}

// Latitude returns the geographic latitude in degrees.
func (p GeographicPoint) Latitude() float64 {
	return 90 - p.Colat
}

// LocalXY projects p into a planar coordinate system centered on
// origin using a latitude-scaled equirectangular projection: x runs
// east in kilometers scaled by the sine of the origin colatitude
// (the cosine of its latitude), y runs south with increasing
// colatitude. The approximation is only meaningful over the small
// angular extents spanned by neighboring grid cells.
func (p GeographicPoint) LocalXY(origin GeographicPoint) (x, y float64) {
	x = wrapDeltaLon(p.Colon-origin.Colon) * math.Sin(origin.Colat*math.Pi/180) * DegToKm
	y = (p.Colat - origin.Colat) * DegToKm
	return x, y
}

// DistanceTo returns the planar distance in kilometers between p and
// origin in the local projection centered on origin.
func (p GeographicPoint) DistanceTo(origin GeographicPoint) float64 {
	x, y := p.LocalXY(origin)
	return math.Hypot(x, y)
}

// wrapDeltaLon maps a longitude difference into [-180, 180] so that
// points on opposite sides of the prime meridian or the dateline
// measure the short way around.
func wrapDeltaLon(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}
