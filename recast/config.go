package recast

import (
	"errors"
	"fmt"
	"io"

	"github.com/gorustyt/gonmgen/common"
	"gopkg.in/yaml.v3"
)

// Config holds the generator options. Lengths and heights are in world
// units and are converted to voxels by the generator.
type Config struct {
	CellSize                  float64 `yaml:"cell_size"`
	CellHeight                float64 `yaml:"cell_height"`
	MinTraversableHeight      float64 `yaml:"min_traversable_height"`
	MaxTraversableStep        float64 `yaml:"max_traversable_step"`
	MaxTraversableSlope       float64 `yaml:"max_traversable_slope"` // degrees, [0,85]
	ClipLedges                bool    `yaml:"clip_ledges"`
	TraversableAreaBorderSize float64 `yaml:"traversable_area_border_size"`
	SmoothingThreshold        int     `yaml:"smoothing_threshold"` // [0,4]
	UseConservativeExpansion  bool    `yaml:"use_conservative_expansion"`
	MinUnconnectedRegionSize  int     `yaml:"min_unconnected_region_size"`
	MergeRegionSize           int     `yaml:"merge_region_size"`
	MaxEdgeLength             float64 `yaml:"max_edge_length"`
	EdgeMaxDeviation          float64 `yaml:"edge_max_deviation"`
	MaxVertsPerPoly           int     `yaml:"max_verts_per_poly"`
	ContourSampleDistance     float64 `yaml:"contour_sample_distance"`
	ContourMaxDeviation       float64 `yaml:"contour_max_deviation"`
}

// DefaultConfig returns a Config sized for human scale geometry.
func DefaultConfig() *Config {
	return &Config{
		CellSize:                 0.3,
		CellHeight:               0.2,
		MinTraversableHeight:     2.0,
		MaxTraversableStep:       0.6,
		MaxTraversableSlope:      45,
		SmoothingThreshold:       2,
		UseConservativeExpansion: true,
		MinUnconnectedRegionSize: 8,
		MergeRegionSize:          20,
		MaxEdgeLength:            12,
		EdgeMaxDeviation:         1.3,
		MaxVertsPerPoly:          6,
		ContourSampleDistance:    1.8,
		ContourMaxDeviation:      0.2,
	}
}

// LoadConfig decodes YAML on top of DefaultConfig. The result is clamped
// and validated.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Clamp()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clamp moves out of range values into range.
func (c *Config) Clamp() {
	c.MinTraversableHeight = max(0, c.MinTraversableHeight)
	c.MaxTraversableStep = max(0, c.MaxTraversableStep)
	c.MaxTraversableSlope = common.Clamp(c.MaxTraversableSlope, 0, maxTraversableSlopeLimit)
	c.TraversableAreaBorderSize = max(0, c.TraversableAreaBorderSize)
	c.SmoothingThreshold = common.Clamp(c.SmoothingThreshold, 0, 4)
	c.MinUnconnectedRegionSize = max(1, c.MinUnconnectedRegionSize)
	c.MergeRegionSize = max(0, c.MergeRegionSize)
	c.MaxEdgeLength = max(0, c.MaxEdgeLength)
	c.EdgeMaxDeviation = max(0, c.EdgeMaxDeviation)
	c.ContourSampleDistance = max(0, c.ContourSampleDistance)
	c.ContourMaxDeviation = max(0, c.ContourMaxDeviation)
}

// Validate reports the values that cannot be clamped into something useful.
func (c *Config) Validate() error {
	var errs []error
	if c.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("cell_size must be positive, got %v", c.CellSize))
	}
	if c.CellHeight <= 0 {
		errs = append(errs, fmt.Errorf("cell_height must be positive, got %v", c.CellHeight))
	}
	if c.MaxVertsPerPoly < 3 {
		errs = append(errs, fmt.Errorf("max_verts_per_poly must be at least 3, got %d", c.MaxVertsPerPoly))
	}
	return errors.Join(errs...)
}

// voxelParams holds the world unit options converted to voxels.
type voxelParams struct {
	minTraversableHeight      int
	maxTraversableStep        int
	traversableAreaBorderSize int
	maxEdgeLength             int
}

func (c *Config) voxelParams() voxelParams {
	p := voxelParams{minTraversableHeight: 1}
	if c.MinTraversableHeight != 0 {
		p.minTraversableHeight = max(1, common.CeilDiv(c.MinTraversableHeight, c.CellHeight))
	}
	if c.MaxTraversableStep != 0 {
		p.maxTraversableStep = common.CeilDiv(c.MaxTraversableStep, c.CellHeight)
	}
	if c.TraversableAreaBorderSize != 0 {
		p.traversableAreaBorderSize = common.CeilDiv(c.TraversableAreaBorderSize, c.CellSize)
	}
	if c.MaxEdgeLength != 0 {
		p.maxEdgeLength = common.CeilDiv(c.MaxEdgeLength, c.CellSize)
	}
	return p
}

var configFields = map[string]func(dst, src *Config){
	"cell_size":                    func(dst, src *Config) { dst.CellSize = src.CellSize },
	"cell_height":                  func(dst, src *Config) { dst.CellHeight = src.CellHeight },
	"min_traversable_height":       func(dst, src *Config) { dst.MinTraversableHeight = src.MinTraversableHeight },
	"max_traversable_step":         func(dst, src *Config) { dst.MaxTraversableStep = src.MaxTraversableStep },
	"max_traversable_slope":        func(dst, src *Config) { dst.MaxTraversableSlope = src.MaxTraversableSlope },
	"clip_ledges":                  func(dst, src *Config) { dst.ClipLedges = src.ClipLedges },
	"traversable_area_border_size": func(dst, src *Config) { dst.TraversableAreaBorderSize = src.TraversableAreaBorderSize },
	"smoothing_threshold":          func(dst, src *Config) { dst.SmoothingThreshold = src.SmoothingThreshold },
	"use_conservative_expansion":   func(dst, src *Config) { dst.UseConservativeExpansion = src.UseConservativeExpansion },
	"min_unconnected_region_size":  func(dst, src *Config) { dst.MinUnconnectedRegionSize = src.MinUnconnectedRegionSize },
	"merge_region_size":            func(dst, src *Config) { dst.MergeRegionSize = src.MergeRegionSize },
	"max_edge_length":              func(dst, src *Config) { dst.MaxEdgeLength = src.MaxEdgeLength },
	"edge_max_deviation":           func(dst, src *Config) { dst.EdgeMaxDeviation = src.EdgeMaxDeviation },
	"max_verts_per_poly":           func(dst, src *Config) { dst.MaxVertsPerPoly = src.MaxVertsPerPoly },
	"contour_sample_distance":      func(dst, src *Config) { dst.ContourSampleDistance = src.ContourSampleDistance },
	"contour_max_deviation":        func(dst, src *Config) { dst.ContourMaxDeviation = src.ContourMaxDeviation },
}

// Merge applies file loaded values into c, but only for options that were
// NOT explicitly set on the command line. explicit holds the yaml keys of
// those options.
func (c *Config) Merge(fromFile *Config, explicit map[string]bool) {
	for name, apply := range configFields {
		if !explicit[name] {
			apply(c, fromFile)
		}
	}
}
