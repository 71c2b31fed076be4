package slab

import (
	"sort"

	"bayesdepth/internal/models"
	"bayesdepth/pkg/config"
)

// Slabs is the registry of slab areas. A surface location may sit
// above several slabs at once (stacked or overturned geometry), so
// queries aggregate across every matching area. The registry is
// immutable after construction and safe for concurrent queries.
type Slabs struct {
	cfg   *config.Config
	areas []*Area
}

// NewSlabs returns an empty registry.
func NewSlabs(cfg *config.Config) *Slabs {
	return &Slabs{cfg: cfg}
}

// Add appends an area to the registry.
func (s *Slabs) Add(a *Area) {
	s.areas = append(s.areas, a)
}

// AreaCount returns the number of registered areas.
func (s *Slabs) AreaCount() int { return len(s.areas) }

// IsFound reports whether any area holds slab samples bracketing the
// location.
func (s *Slabs) IsFound(lat, lon float64) bool {
	pt := models.Canonical(lat, lon)
	if !pt.IsValid() {
		return false
	}

	for _, a := range s.areas {
		if !a.Contains(pt.Colat, pt.Colon) {
			continue
		}
		if _, ok := a.Find(pt.Colat, pt.Colon); ok {
			return true
		}
	}
	return false
}

// Depths interpolates one depth triplet per matching area, sorted
// ascending by center depth. An empty slice means no slab underlies
// the location.
func (s *Slabs) Depths(lat, lon float64) []models.SlabDepth {
	pt := models.Canonical(lat, lon)
	if !pt.IsValid() {
		return nil
	}

	var depths []models.SlabDepth
	for _, a := range s.areas {
		if !a.Contains(pt.Colat, pt.Colon) {
			continue
		}
		m, ok := a.Find(pt.Colat, pt.Colon)
		if !ok {
			continue
		}
		if d, ok := a.Depth(pt.Colat, pt.Colon, m); ok {
			depths = append(depths, d)
		}
	}

	sort.Slice(depths, func(i, j int) bool {
		return depths[i].Center < depths[j].Center
	})
	return depths
}
