package models

// DepthSource identifies which reference dataset produced a depth
// estimate, so the location solver can weight the prior accordingly.
type DepthSource int

const (
	// SourceNone marks the zero value of an estimate.
	SourceNone DepthSource = iota

	// SourceZoneCell is a single historical-seismicity grid cell
	// statistic, returned without interpolation.
	SourceZoneCell

	// SourceZoneInterp is a historical-seismicity statistic
	// interpolated from neighboring grid cells.
	SourceZoneInterp

	// SourceSlab is a depth interpolated from subducting-slab
	// geometry.
	SourceSlab

	// SourceDefault is the default shallow-crust prior used when no
	// reference data covers the query point.
	SourceDefault
)

// String returns a short provenance tag for logging.
func (s DepthSource) String() string {
	switch s {
	case SourceZoneCell:
		return "zone-cell"
	case SourceZoneInterp:
		return "zone-interp"
	case SourceSlab:
		return "slab"
	case SourceDefault:
		return "default"
	}
	return "none"
}

// DepthEstimate is a prior depth with its uncertainty. Depth is in
// kilometers positive down; Spread is the symmetric one-sigma
// uncertainty; Lower and Upper are the absolute shallow and deep
// bounds of the supporting statistic.
type DepthEstimate struct {
	// Depth is the estimated depth in kilometers.
	Depth float64

	// Spread is the symmetric uncertainty in kilometers, never below
	// the dataset spread floor.
	Spread float64

	// Lower is the shallow bound of the supporting data in kilometers.
	Lower float64

	// Upper is the deep bound of the supporting data in kilometers.
	Upper float64

	// Source records which dataset produced the estimate.
	Source DepthSource
}

// SlabDepth is one slab-geometry result: the earthquake depth within
// the slab bracketed by the slab surface above and the slab bottom
// below. All depths are in kilometers positive down with
// Lower <= Center <= Upper.
type SlabDepth struct {
	// Lower is the shallow bound (slab surface) depth.
	Lower float64 `yaml:"lower"`

	// Center is the expected earthquake depth within the slab.
	Center float64 `yaml:"center"`

	// Upper is the deep bound (slab bottom) depth.
	Upper float64 `yaml:"upper"`
}

// LowerGap returns the distance from the center depth down to the
// shallow bound.
func (s SlabDepth) LowerGap() float64 { return s.Center - s.Lower }

// UpperGap returns the distance from the center depth to the deep
// bound.
func (s SlabDepth) UpperGap() float64 { return s.Upper - s.Center }

// MaxGap returns the larger of the two center-to-bound gaps.
func (s SlabDepth) MaxGap() float64 {
	if g := s.LowerGap(); g > s.UpperGap() {
		return g
	}
	return s.UpperGap()
}

// SlabPoint is one sampled node of a slab model: a location plus its
// depth triplet. Depth signs are normalized positive down when the
// raw model is loaded.
type SlabPoint struct {
	// Colat is the canonical colatitude of the sample in degrees.
	Colat float64 `yaml:"colat"`

	// Colon is the canonical east longitude of the sample in degrees.
	Colon float64 `yaml:"colon"`

	// Depth is the sampled depth triplet.
	Depth SlabDepth `yaml:"depth"`
}

// Point returns the sample location as a GeographicPoint.
func (p SlabPoint) Point() GeographicPoint {
	return GeographicPoint{Colat: p.Colat, Colon: p.Colon}
}
