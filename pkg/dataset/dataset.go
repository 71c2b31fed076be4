// Package dataset loads the reference datasets from a YAML snapshot
// and assembles them into a ready-to-query engine. A snapshot may
// carry any combination of the fixed zone grid, the variable zone
// grid, and slab areas; whatever is present is built, whatever is
// absent simply reports no data at query time.
package dataset

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"bayesdepth/internal/models"
	"bayesdepth/pkg/bayesdepth"
	"bayesdepth/pkg/config"
	"bayesdepth/pkg/slab"
	"bayesdepth/pkg/zonestats"
)

// FixedCell is one populated cell of the fixed 1x1 degree grid. Row
// counts whole degrees of colatitude from the north pole, Col whole
// degrees of canonical east longitude.
type FixedCell struct {
	Row  int     `yaml:"row"`
	Col  int     `yaml:"col"`
	Mean float64 `yaml:"mean"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

// FixedSnapshot lists only the populated cells; the builder expands
// them into the sparse key table the grid indexes through.
type FixedSnapshot struct {
	Cells []FixedCell `yaml:"cells"`
}

// VariableSample is one populated longitude sample of a variable-grid
// row. Index counts samples eastward from longitude zero.
type VariableSample struct {
	Index  int     `yaml:"index"`
	Mean   float64 `yaml:"mean"`
	Spread float64 `yaml:"spread"`
}

// VariableRow declares a row's sample count and its populated samples.
type VariableRow struct {
	Length  int              `yaml:"length"`
	Samples []VariableSample `yaml:"samples"`
}

// VariableSnapshot is the variable-spacing zone grid: rows at a
// uniform colatitude step, each with its own longitude resolution.
type VariableSnapshot struct {
	FirstColat float64       `yaml:"first_colat"`
	Spacing    float64       `yaml:"spacing"`
	Rows       []VariableRow `yaml:"rows"`
}

// RegridSpec asks the builder to condense an area's raw samples onto
// a uniform coarse grid before indexing. Oversampled tilted slabs
// need this; regularly gridded models leave it unset.
type RegridSpec struct {
	LatInc float64 `yaml:"lat_inc"`
	LonInc float64 `yaml:"lon_inc"`
}

// AreaSnapshot is one slab model: its nominal sample spacing, an
// optional regrid request, and the raw sampled points.
type AreaSnapshot struct {
	Name       string             `yaml:"name"`
	LatSpacing float64            `yaml:"lat_spacing"`
	LonSpacing float64            `yaml:"lon_spacing"`
	Regrid     *RegridSpec        `yaml:"regrid,omitempty"`
	Points     []models.SlabPoint `yaml:"points"`
}

// Dataset is the root of a snapshot file.
type Dataset struct {
	Fixed    *FixedSnapshot    `yaml:"fixed,omitempty"`
	Variable *VariableSnapshot `yaml:"variable,omitempty"`
	Slabs    []AreaSnapshot    `yaml:"slabs,omitempty"`
}

// Load reads a snapshot from a YAML file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}
	return &d, nil
}

// Save writes a snapshot to a YAML file.
func (d *Dataset) Save(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dataset file: %w", err)
	}
	return nil
}

// Build assembles the snapshot into an engine. When both zone grids
// are present the variable grid wins; it supersedes the fixed layout.
func (d *Dataset) Build(cfg *config.Config) (*bayesdepth.Engine, error) {
	zone, err := d.buildZone(cfg)
	if err != nil {
		return nil, err
	}

	slabs, err := d.buildSlabs(cfg)
	if err != nil {
		return nil, err
	}

	return bayesdepth.New(cfg, zone, slabs), nil
}

func (d *Dataset) buildZone(cfg *config.Config) (*zonestats.Interpolator, error) {
	switch {
	case d.Variable != nil:
		rows := make([][]*zonestats.VariableCell, len(d.Variable.Rows))
		samples := 0
		for i, r := range d.Variable.Rows {
			if r.Length <= 0 {
				return nil, fmt.Errorf("variable grid row %d declares length %d", i, r.Length)
			}
			row := make([]*zonestats.VariableCell, r.Length)
			for _, s := range r.Samples {
				if s.Index < 0 || s.Index >= r.Length {
					return nil, fmt.Errorf("variable grid row %d sample index %d exceeds length %d",
						i, s.Index, r.Length)
				}
				row[s.Index] = &zonestats.VariableCell{Mean: s.Mean, Spread: s.Spread}
				samples++
			}
			rows[i] = row
		}

		grid, err := zonestats.NewVariableGrid(cfg, d.Variable.FirstColat, d.Variable.Spacing, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to build variable grid: %w", err)
		}

		log.WithFields(log.Fields{
			"rows":    len(rows),
			"samples": samples,
		}).Info("Built variable zone grid")
		return zonestats.NewInterpolator(cfg, grid), nil

	case d.Fixed != nil:
		keys := make([]int32, 180*360)
		for i := range keys {
			keys[i] = -1
		}
		stats := make([]zonestats.CellAggregate, 0, len(d.Fixed.Cells))
		for _, c := range d.Fixed.Cells {
			if c.Row < 0 || c.Row >= 180 || c.Col < 0 || c.Col >= 360 {
				return nil, fmt.Errorf("fixed grid cell (%d, %d) out of range", c.Row, c.Col)
			}
			keys[c.Row*360+c.Col] = int32(len(stats))
			stats = append(stats, zonestats.CellAggregate{Mean: c.Mean, Min: c.Min, Max: c.Max})
		}

		grid, err := zonestats.NewFixedGrid(cfg, keys, stats)
		if err != nil {
			return nil, fmt.Errorf("failed to build fixed grid: %w", err)
		}

		log.WithField("cells", len(stats)).Info("Built fixed zone grid")
		return zonestats.NewInterpolator(cfg, grid), nil

	default:
		return nil, nil
	}
}

func (d *Dataset) buildSlabs(cfg *config.Config) (*slab.Slabs, error) {
	slabs := slab.NewSlabs(cfg)

	for _, as := range d.Slabs {
		pts := as.Points
		latInc, lonInc := as.LatSpacing, as.LonSpacing

		if as.Regrid != nil {
			r := slab.NewRegridder(as.Regrid.LatInc, as.Regrid.LonInc)
			r.Add(pts...)
			pts = r.Points()
			latInc, lonInc = as.Regrid.LatInc, as.Regrid.LonInc

			log.WithFields(log.Fields{
				"area":    as.Name,
				"raw":     len(as.Points),
				"merged":  len(pts),
				"lat_inc": latInc,
				"lon_inc": lonInc,
			}).Info("Regridded slab area")
		}

		a, err := slab.BuildArea(cfg, pts, latInc, lonInc)
		if err != nil {
			return nil, fmt.Errorf("failed to build slab area %q: %w", as.Name, err)
		}

		log.WithFields(log.Fields{
			"area":   as.Name,
			"points": len(pts),
			"rows":   a.RowCount(),
		}).Info("Built slab area")
		slabs.Add(a)
	}

	return slabs, nil
}
