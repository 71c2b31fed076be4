// Package bayesdepth exposes the Bayesian depth engine: a spatially
// varying prior for earthquake hypocenter depth combining historical
// zone statistics with subducting-slab geometry. The outer location
// solver consumes the engine's output as the depth term of its
// objective function.
package bayesdepth

import (
	"math"

	"bayesdepth/internal/models"
	"bayesdepth/pkg/config"
	"bayesdepth/pkg/slab"
	"bayesdepth/pkg/zonestats"
)

// Engine answers depth-prior queries against the reference datasets.
// All referenced structures are immutable after construction, so one
// engine serves concurrent callers.
type Engine struct {
	cfg   *config.Config
	zone  *zonestats.Interpolator
	slabs *slab.Slabs
}

// New assembles an engine. zone or slabs may be nil when the
// corresponding dataset is unavailable; queries against a missing
// dataset report no data.
func New(cfg *config.Config, zone *zonestats.Interpolator, slabs *slab.Slabs) *Engine {
	return &Engine{cfg: cfg, zone: zone, slabs: slabs}
}

// Config returns the engine's calibration.
func (e *Engine) Config() *config.Config { return e.cfg }

// DepthEstimate returns the zone statistic of the cell enclosing the
// location, without interpolation.
func (e *Engine) DepthEstimate(lat, lon float64) (models.DepthEstimate, bool) {
	if e.zone == nil {
		return models.DepthEstimate{}, false
	}
	return e.zone.CellEstimate(lat, lon)
}

// InterpolatedDepthEstimate returns the zone statistic interpolated
// from neighboring cells.
func (e *Engine) InterpolatedDepthEstimate(lat, lon float64) (models.DepthEstimate, bool) {
	if e.zone == nil {
		return models.DepthEstimate{}, false
	}
	return e.zone.Estimate(lat, lon)
}

// SlabDepths returns one interpolated depth triplet per slab under
// the location, sorted ascending by center depth.
func (e *Engine) SlabDepths(lat, lon float64) []models.SlabDepth {
	if e.slabs == nil {
		return nil
	}
	return e.slabs.Depths(lat, lon)
}

// BayesianDepth merges the default shallow-crust prior with the slab
// geometry under the location into one prior depth and spread for a
// hypocenter trial at trialDepth. The branch order is calibrated
// policy and is the tie-break where the regimes overlap:
//
//  1. a shallow slab (center at or below the merge depth) merges with
//     the crust into one interval from the surface to three times the
//     slab's upper-bound excess;
//  2. a trial already below the free-depth floor always commits to
//     the slab depth;
//  3. otherwise the prior follows whichever of the default depth and
//     the slab depth lies closer to the trial.
func (e *Engine) BayesianDepth(lat, lon, trialDepth float64) (depth, spread float64) {
	defDepth := e.cfg.Depth.Default
	defSpread := e.cfg.FloorSpread(e.cfg.Depth.DefaultSpread)

	matches := e.SlabDepths(lat, lon)
	if len(matches) == 0 {
		return defDepth, defSpread
	}

	nearest := matches[0]
	for _, m := range matches[1:] {
		if math.Abs(m.Center-trialDepth) < math.Abs(nearest.Center-trialDepth) {
			nearest = m
		}
	}

	slabSpread := e.cfg.FloorSpread(e.cfg.Slab.SpreadFactor * nearest.MaxGap())

	switch {
	case nearest.Center <= e.cfg.Slab.MergeDepth:
		span := e.cfg.Slab.SpreadFactor * nearest.UpperGap()
		return span / 2, e.cfg.FloorSpread(span / 2)

	case trialDepth > e.cfg.Slab.FreeDepthFloor:
		return nearest.Center, slabSpread

	default:
		if math.Abs(defDepth-trialDepth) <= math.Abs(nearest.Center-trialDepth) {
			return defDepth, defSpread
		}
		return nearest.Center, slabSpread
	}
}
