package osm

import (
	"testing"

	overpass "github.com/cwbudde/go-overpass"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/canopy/pkg/models"
)

var testArea = models.BoundingBox{MinLon: 12.4, MinLat: 55.41, MaxLon: 12.75, MaxLat: 55.75}

func TestStreetsQuery(t *testing.T) {
	q := StreetsQuery(testArea)
	// Overpass bbox order is (south, west, north, east).
	assert.Contains(t, q, `way["highway"](55.41,12.4,55.75,12.75)`)
	assert.Contains(t, q, "[out:json]")
	assert.Contains(t, q, ";>;")
}

func TestTreesQuery(t *testing.T) {
	q := TreesQuery(testArea)
	assert.Contains(t, q, `node["natural"="tree"](55.41,12.4,55.75,12.75)`)
	assert.Contains(t, q, `way["natural"="tree_row"](55.41,12.4,55.75,12.75)`)
}

func TestStreetFeatures(t *testing.T) {
	res := &overpass.Result{
		Ways: map[int64]*overpass.Way{
			2: {
				Meta: overpass.Meta{Tags: map[string]string{"highway": "residential", "name": "Istedgade"}},
				Nodes: []*overpass.Node{
					{Lat: 55.668, Lon: 12.552},
					{Lat: 55.669, Lon: 12.555},
				},
			},
			1: {
				Meta: overpass.Meta{Tags: map[string]string{"highway": "primary", "surface": "asphalt"}},
				Nodes: []*overpass.Node{
					{Lat: 55.676, Lon: 12.568},
					{Lat: 55.677, Lon: 12.570},
				},
			},
			3: {
				// Not a street; filtered out.
				Meta: overpass.Meta{Tags: map[string]string{"building": "yes"}},
				Nodes: []*overpass.Node{
					{Lat: 55.6, Lon: 12.5},
					{Lat: 55.6, Lon: 12.6},
				},
			},
		},
	}

	fc := StreetFeatures(res)
	require.Len(t, fc.Features, 2)

	// Ways are emitted in ID order.
	first := fc.Features[0]
	assert.Equal(t, "primary", first.Properties["highway"])
	assert.Equal(t, "asphalt", first.Properties["surface"])
	assert.Nil(t, first.Properties["name"])

	second := fc.Features[1]
	assert.Equal(t, "Istedgade", second.Properties["name"])
	assert.Equal(t, "unknown", second.Properties["surface"], "missing surface defaults to unknown")

	line, ok := second.Geometry.(orb.LineString)
	require.True(t, ok)
	require.Len(t, line, 2)
	assert.Equal(t, orb.Point{12.552, 55.668}, line[0], "coordinates are (lon, lat)")
}

func TestStreetFeaturesSkipsDegenerateWays(t *testing.T) {
	res := &overpass.Result{
		Ways: map[int64]*overpass.Way{
			1: {
				Meta:  overpass.Meta{Tags: map[string]string{"highway": "residential"}},
				Nodes: []*overpass.Node{{Lat: 55.6, Lon: 12.5}},
			},
		},
	}
	assert.Empty(t, StreetFeatures(res).Features)
}

func TestTreeFeatures(t *testing.T) {
	res := &overpass.Result{
		Nodes: map[int64]*overpass.Node{
			10: {Lat: 55.66, Lon: 12.55, Meta: overpass.Meta{Tags: map[string]string{"natural": "tree"}}},
			11: {Lat: 55.67, Lon: 12.56, Meta: overpass.Meta{Tags: map[string]string{}}},
			12: {Lat: 55.68, Lon: 12.57, Meta: overpass.Meta{Tags: map[string]string{"natural": "tree"}}},
		},
		Ways: map[int64]*overpass.Way{
			20: {
				Meta: overpass.Meta{Tags: map[string]string{"natural": "tree_row"}},
				Nodes: []*overpass.Node{
					{Lat: 55.66, Lon: 12.55},
					{Lat: 55.661, Lon: 12.551},
				},
			},
			21: {
				Meta:  overpass.Meta{Tags: map[string]string{"highway": "path"}},
				Nodes: []*overpass.Node{{Lat: 55.6, Lon: 12.5}, {Lat: 55.7, Lon: 12.6}},
			},
		},
	}

	fc := TreeFeatures(res)
	require.Len(t, fc.Features, 3)

	assert.Equal(t, "tree", fc.Features[0].Properties["natural"])
	_, ok := fc.Features[0].Geometry.(orb.Point)
	assert.True(t, ok)

	row := fc.Features[2]
	assert.Equal(t, "tree_row", row.Properties["natural"])
	_, ok = row.Geometry.(orb.LineString)
	assert.True(t, ok)
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "asphalt", normalizeTag("asphalt"))
	assert.Equal(t, "asphalt, concrete", normalizeTag("asphalt;concrete"))
	assert.Equal(t, "a, b, c", normalizeTag("a; b;c"))
}
