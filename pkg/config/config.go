// Package config provides tuning-constant loading and management for
// the Bayesian depth engine. It handles loading the calibration from
// YAML files and provides the default calibration. Every physical and
// tuning constant used by the engine lives here so that alternate
// calibrations can be tested by swapping one structure, not by
// editing code.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the immutable calibration injected into every engine
// component at construction.
type Config struct {
	// Depth parameters bound every estimate the engine emits.
	Depth struct {
		// Min is the shallowest depth any estimate may take, in km.
		Min float64 `yaml:"min"`

		// Max is the deepest depth any estimate may take, in km.
		Max float64 `yaml:"max"`

		// Default is the shallow-crust prior depth returned when no
		// reference data covers a query point, in km.
		Default float64 `yaml:"default"`

		// DefaultSpread is the uncertainty of the shallow-crust
		// prior, in km.
		DefaultSpread float64 `yaml:"defaultSpread"`

		// SpreadFloor is the minimum uncertainty attached to any
		// estimate, in km.
		SpreadFloor float64 `yaml:"spreadFloor"`
	} `yaml:"depth"`

	// Zone parameters tune the historical-seismicity grid lookups.
	Zone struct {
		// Spread is the fixed uncertainty attached to legacy-grid
		// cell statistics, in km. It is a dataset constant, not
		// derived from the per-cell min/max.
		Spread float64 `yaml:"spread"`

		// RepairHalfWidth is the synthetic interval half-width used
		// when a cell's min/mean/max ordering is corrupt, in km.
		RepairHalfWidth float64 `yaml:"repairHalfWidth"`

		// RepairPivot decides the side of the mean the synthetic
		// repair interval is placed on: below the mean for means
		// shallower than the pivot, above it otherwise. In km.
		RepairPivot float64 `yaml:"repairPivot"`

		// RegimeBoundary separates the shallow/intermediate outlier
		// rejection regime from the deep regime, in km.
		RegimeBoundary float64 `yaml:"regimeBoundary"`

		// ShallowTolerance is the largest depth difference from the
		// nearest candidate tolerated in the shallow regime, in km.
		ShallowTolerance float64 `yaml:"shallowTolerance"`

		// DeepTolerance is the largest shortfall below the deepest
		// candidate tolerated in the deep regime, in km.
		DeepTolerance float64 `yaml:"deepTolerance"`

		// TwoPointInflation scales the spread when interpolation
		// degrades from three support points to two.
		TwoPointInflation float64 `yaml:"twoPointInflation"`

		// OnePointInflation scales the spread when a single support
		// point is passed through verbatim.
		OnePointInflation float64 `yaml:"onePointInflation"`
	} `yaml:"zone"`

	// Slab parameters tune slab-geometry interpolation and the depth
	// regime combiner.
	Slab struct {
		// MergeDepth is the slab earthquake depth at or below which
		// the slab prior is merged with the shallow crust into one
		// surface-anchored interval, in km.
		MergeDepth float64 `yaml:"mergeDepth"`

		// FreeDepthFloor is the trial depth above which the combiner
		// always commits to the slab depth, in km.
		FreeDepthFloor float64 `yaml:"freeDepthFloor"`

		// SpreadFactor scales the larger center-to-bound gap into
		// the spread of a slab-committed prior.
		SpreadFactor float64 `yaml:"spreadFactor"`

		// PartialWiden is the fraction of the center-to-bound gap
		// added to each bound when interpolation degrades to two
		// support corners.
		PartialWiden float64 `yaml:"partialWiden"`

		// LoneWiden is the fraction of the center-to-bound gap added
		// to each bound when a single corner is passed through.
		LoneWiden float64 `yaml:"loneWiden"`
	} `yaml:"slab"`
}

// DefaultConfig returns the standard calibration.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Depth.Min = 0
	cfg.Depth.Max = 700
	cfg.Depth.Default = 10
	cfg.Depth.DefaultSpread = 5
	cfg.Depth.SpreadFloor = 5

	cfg.Zone.Spread = 75
	cfg.Zone.RepairHalfWidth = 50
	cfg.Zone.RepairPivot = 400
	cfg.Zone.RegimeBoundary = 70
	cfg.Zone.ShallowTolerance = 100
	cfg.Zone.DeepTolerance = 300
	cfg.Zone.TwoPointInflation = 1.5
	cfg.Zone.OnePointInflation = 2.0

	cfg.Slab.MergeDepth = 80
	cfg.Slab.FreeDepthFloor = 50
	cfg.Slab.SpreadFactor = 3
	cfg.Slab.PartialWiden = 0.5
	cfg.Slab.LoneWiden = 1.0

	return cfg
}

// ClampDepth clips a depth into the configured depth window.
func (c *Config) ClampDepth(depth float64) float64 {
	if depth < c.Depth.Min {
		return c.Depth.Min
	}
	if depth > c.Depth.Max {
		return c.Depth.Max
	}
	return depth
}

// FloorSpread raises a spread to at least the configured floor.
func (c *Config) FloorSpread(spread float64) float64 {
	if spread < c.Depth.SpreadFloor {
		return c.Depth.SpreadFloor
	}
	return spread
}

// LoadConfig loads a calibration from a YAML file. Fields absent from
// the file keep their default values. If the file doesn't exist, the
// default calibration is returned.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves a calibration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
