package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.05, cfg.Tiler.GridSize)
	assert.Equal(t, 20.0, cfg.Enrich.MaxTreeDistance)
	assert.Equal(t, 10.0, cfg.Enrich.TreeRowSpacing)
	assert.NotEmpty(t, cfg.Overpass.Endpoint)

	b := cfg.AreaBounds()
	assert.Less(t, b.MinLon, b.MaxLon)
	assert.Less(t, b.MinLat, b.MaxLat)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canopy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
area:
  min_lon: 10.0
  min_lat: 56.0
  max_lon: 10.3
  max_lat: 56.3
tiler:
  grid_size: 0.1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.Tiler.GridSize)
	assert.Equal(t, 10.0, cfg.Area.MinLon)
	// Untouched sections keep their defaults.
	assert.Equal(t, 20.0, cfg.Enrich.MaxTreeDistance)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"tiler:\n  grid_size: -0.05\n",
		"enrich:\n  max_tree_distance: 0\n",
		"area:\n  min_lon: 13.0\n  max_lon: 12.0\n",
	}
	for _, body := range cases {
		path := filepath.Join(t.TempDir(), "canopy.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := Load(path)
		assert.Error(t, err, "config %q must be rejected", body)
	}
}
