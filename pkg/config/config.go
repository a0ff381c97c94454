// Package config loads the YAML pipeline configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kass/canopy/pkg/models"
)

// Config drives a full pipeline run. Every field has a working default so
// the tool runs without a config file at all.
type Config struct {
	// Area is the acquisition bounding box, WGS84 degrees.
	Area struct {
		MinLon float64 `yaml:"min_lon"`
		MinLat float64 `yaml:"min_lat"`
		MaxLon float64 `yaml:"max_lon"`
		MaxLat float64 `yaml:"max_lat"`
	} `yaml:"area"`

	Overpass struct {
		Endpoint       string `yaml:"endpoint"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"overpass"`

	Enrich struct {
		// MaxTreeDistance is the join threshold in meters: a tree further
		// than this from every street is left unmatched.
		MaxTreeDistance float64 `yaml:"max_tree_distance"`
		// TreeRowSpacing is the interpolation interval in meters for
		// natural=tree_row ways.
		TreeRowSpacing float64 `yaml:"tree_row_spacing"`
	} `yaml:"enrich"`

	Tiler struct {
		// GridSize is the tile cell edge in degrees.
		GridSize float64 `yaml:"grid_size"`
	} `yaml:"tiler"`

	// WorkDir holds intermediate GeoJSON files between stages.
	WorkDir string `yaml:"work_dir"`
	// OutputDir receives the tile sets.
	OutputDir string `yaml:"output_dir"`
}

// Default returns the configuration for the Greater Copenhagen dataset the
// tool was built around.
func Default() *Config {
	cfg := &Config{}
	cfg.Area.MinLon = 12.40
	cfg.Area.MinLat = 55.41
	cfg.Area.MaxLon = 12.75
	cfg.Area.MaxLat = 55.75
	cfg.Overpass.Endpoint = "https://overpass-api.de/api/interpreter"
	cfg.Overpass.TimeoutSeconds = 180
	cfg.Enrich.MaxTreeDistance = 20.0
	cfg.Enrich.TreeRowSpacing = 10.0
	cfg.Tiler.GridSize = 0.05
	cfg.WorkDir = "data"
	cfg.OutputDir = "website/tiles"
	return cfg
}

// Load reads a YAML config file on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Area.MinLon > c.Area.MaxLon || c.Area.MinLat > c.Area.MaxLat {
		return fmt.Errorf("invalid area bounds: %v", c.AreaBounds())
	}
	if c.Tiler.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got %v", c.Tiler.GridSize)
	}
	if c.Enrich.MaxTreeDistance <= 0 {
		return fmt.Errorf("max_tree_distance must be positive, got %v", c.Enrich.MaxTreeDistance)
	}
	if c.Enrich.TreeRowSpacing <= 0 {
		return fmt.Errorf("tree_row_spacing must be positive, got %v", c.Enrich.TreeRowSpacing)
	}
	return nil
}

// AreaBounds returns the acquisition area as a bounding box.
func (c *Config) AreaBounds() models.BoundingBox {
	return models.BoundingBox{
		MinLon: c.Area.MinLon,
		MinLat: c.Area.MinLat,
		MaxLon: c.Area.MaxLon,
		MaxLat: c.Area.MaxLat,
	}
}
