// Package osm acquires the raw street network and tree features for an area
// from the Overpass API and converts them to GeoJSON.
package osm

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	overpass "github.com/cwbudde/go-overpass"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kass/canopy/pkg/logger"
	"github.com/kass/canopy/pkg/models"
)

// Client wraps an Overpass API client for one endpoint.
type Client struct {
	api overpass.Client
}

// NewClient builds a client for the given Overpass endpoint. An empty
// endpoint uses the library's default public instance.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		return &Client{api: overpass.New()}
	}
	httpClient := &http.Client{Timeout: timeout}
	return &Client{api: overpass.NewWithSettings(endpoint, 1, httpClient)}
}

// StreetsQuery returns the Overpass QL statement fetching every highway way
// in the box, with its nodes. Overpass bbox order is (south, west, north,
// east).
func StreetsQuery(b models.BoundingBox) string {
	return fmt.Sprintf(
		`[out:json][timeout:180];(way["highway"](%v,%v,%v,%v);>;);out body;`,
		b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}

// TreesQuery returns the Overpass QL statement fetching individual trees
// and tree rows in the box.
func TreesQuery(b models.BoundingBox) string {
	return fmt.Sprintf(
		`[out:json][timeout:180];(node["natural"="tree"](%v,%v,%v,%v);way["natural"="tree_row"](%v,%v,%v,%v);>;);out body;`,
		b.MinLat, b.MinLon, b.MaxLat, b.MaxLon,
		b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}

// FetchStreets queries and converts the street network for the box.
func (c *Client) FetchStreets(b models.BoundingBox) (*geojson.FeatureCollection, error) {
	logger.Log.Infof("fetching streets for %s", b)
	res, err := c.api.Query(StreetsQuery(b))
	if err != nil {
		return nil, fmt.Errorf("overpass streets query failed: %w", err)
	}
	fc := StreetFeatures(&res)
	logger.Log.Infof("fetched %d street segments", len(fc.Features))
	return fc, nil
}

// FetchTrees queries and converts the tree features for the box.
func (c *Client) FetchTrees(b models.BoundingBox) (*geojson.FeatureCollection, error) {
	logger.Log.Infof("fetching trees for %s", b)
	res, err := c.api.Query(TreesQuery(b))
	if err != nil {
		return nil, fmt.Errorf("overpass trees query failed: %w", err)
	}
	fc := TreeFeatures(&res)
	logger.Log.Infof("fetched %d tree features", len(fc.Features))
	return fc, nil
}

// StreetFeatures converts every tagged highway way in an Overpass result to
// a LineString feature with the raw street properties. Ways are emitted in
// ID order so repeated fetches serialize identically.
func StreetFeatures(res *overpass.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, id := range sortedWayIDs(res.Ways) {
		way := res.Ways[id]
		if way.Tags["highway"] == "" {
			continue
		}
		line := wayLine(way)
		if len(line) < 2 {
			continue
		}
		f := geojson.NewFeature(line)
		f.Properties = geojson.Properties{
			"name":    tagOrNil(way.Tags, "name"),
			"surface": tagOrDefault(way.Tags, "surface", "unknown"),
			"highway": normalizeTag(way.Tags["highway"]),
		}
		fc.Append(f)
	}
	return fc
}

// TreeFeatures converts natural=tree nodes to Point features and
// natural=tree_row ways to LineString features, both in ID order.
func TreeFeatures(res *overpass.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	nodeIDs := make([]int64, 0, len(res.Nodes))
	for id := range res.Nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })
	for _, id := range nodeIDs {
		node := res.Nodes[id]
		if node.Tags["natural"] != "tree" {
			continue
		}
		f := geojson.NewFeature(orb.Point{node.Lon, node.Lat})
		f.Properties = geojson.Properties{"natural": "tree"}
		fc.Append(f)
	}

	for _, id := range sortedWayIDs(res.Ways) {
		way := res.Ways[id]
		if way.Tags["natural"] != "tree_row" {
			continue
		}
		line := wayLine(way)
		if len(line) < 2 {
			continue
		}
		f := geojson.NewFeature(line)
		f.Properties = geojson.Properties{"natural": "tree_row"}
		fc.Append(f)
	}
	return fc
}

func sortedWayIDs(ways map[int64]*overpass.Way) []int64 {
	ids := make([]int64, 0, len(ways))
	for id := range ways {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func wayLine(way *overpass.Way) orb.LineString {
	line := make(orb.LineString, 0, len(way.Nodes))
	for _, node := range way.Nodes {
		if node == nil {
			continue
		}
		line = append(line, orb.Point{node.Lon, node.Lat})
	}
	return line
}

// normalizeTag flattens multi-value OSM tags ("asphalt;concrete") into the
// comma-separated form the frontend expects.
func normalizeTag(v string) string {
	if strings.Contains(v, ";") {
		parts := strings.Split(v, ";")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return strings.Join(parts, ", ")
	}
	return v
}

func tagOrNil(tags map[string]string, key string) interface{} {
	if v, ok := tags[key]; ok && v != "" {
		return normalizeTag(v)
	}
	return nil
}

func tagOrDefault(tags map[string]string, key, def string) string {
	if v, ok := tags[key]; ok && v != "" {
		return normalizeTag(v)
	}
	return def
}
