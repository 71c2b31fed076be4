package slab

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"bayesdepth/internal/models"
)

// Regridder condenses an oversampled slab model onto a uniform coarse
// grid. Tilted and narrow slabs are distributed at much finer spacing
// than the row/segment index can carry; every raw sample is dropped
// into the coarse cell covering it and each cell is merged into one
// summary triplet. The output feeds a normal area builder.
type Regridder struct {
	latInc  float64
	lonInc  float64
	buckets map[[2]int][]models.SlabDepth
}

// NewRegridder returns a regridder with the given coarse cell size in
// degrees.
func NewRegridder(latInc, lonInc float64) *Regridder {
	return &Regridder{
		latInc:  latInc,
		lonInc:  lonInc,
		buckets: make(map[[2]int][]models.SlabDepth),
	}
}

// Add pools raw samples into their coarse cells. Depth signs are
// normalized as they enter the pool.
func (r *Regridder) Add(points ...models.SlabPoint) {
	for _, p := range points {
		key := [2]int{
			int(p.Colat / r.latInc),
			int(p.Colon / r.lonInc),
		}
		r.buckets[key] = append(r.buckets[key], normalizeTriplet(p.Depth))
	}
}

// Points merges every cell pool into one summary sample at the cell
// center: the mean of the earthquake depths bracketed by the extreme
// bounds seen in the pool. Samples are returned in row-major order so
// they can feed BuildArea directly.
func (r *Regridder) Points() []models.SlabPoint {
	points := make([]models.SlabPoint, 0, len(r.buckets))

	for key, pool := range r.buckets {
		centers := make([]float64, len(pool))
		lowers := make([]float64, len(pool))
		uppers := make([]float64, len(pool))
		for i, d := range pool {
			centers[i] = d.Center
			lowers[i] = d.Lower
			uppers[i] = d.Upper
		}

		points = append(points, models.SlabPoint{
			Colat: (float64(key[0]) + 0.5) * r.latInc,
			Colon: (float64(key[1]) + 0.5) * r.lonInc,
			Depth: models.SlabDepth{
				Lower:  floats.Min(lowers),
				Center: stat.Mean(centers, nil),
				Upper:  floats.Max(uppers),
			},
		})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Colat != points[j].Colat {
			return points[i].Colat < points[j].Colat
		}
		return points[i].Colon < points[j].Colon
	})
	return points
}
