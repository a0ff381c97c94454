// Package geom provides the small amount of planar and spherical geometry the
// pipeline needs: bounding-box extraction for tiling and meter-based distance
// and interpolation for the enrichment join.
package geom

import (
	"github.com/paulmach/orb"

	"github.com/kass/canopy/pkg/models"
)

// Bounds returns the bounding box of a geometry. The second return value is
// false for geometry types the tiler does not support (Multi* and
// collections) and for geometries without vertices; such features are
// excluded from every tile rather than treated as an error.
//
// orb's own Bound() is deliberately not used here: it produces a box for
// every geometry type, while this contract must report unsupported ones.
func Bounds(g orb.Geometry) (models.BoundingBox, bool) {
	switch geo := g.(type) {
	case orb.Point:
		return models.BoundingBox{
			MinLon: geo[0], MinLat: geo[1],
			MaxLon: geo[0], MaxLat: geo[1],
		}, true
	case orb.LineString:
		return pointBounds([]orb.Point(geo))
	case orb.Polygon:
		// Only the outer ring; holes never extend past it, so the box is
		// still a superset of the polygon.
		if len(geo) == 0 {
			return models.BoundingBox{}, false
		}
		return pointBounds([]orb.Point(geo[0]))
	}
	return models.BoundingBox{}, false
}

func pointBounds(points []orb.Point) (models.BoundingBox, bool) {
	if len(points) == 0 {
		return models.BoundingBox{}, false
	}
	b := models.BoundingBox{
		MinLon: points[0][0], MinLat: points[0][1],
		MaxLon: points[0][0], MaxLat: points[0][1],
	}
	for _, p := range points[1:] {
		if p[0] < b.MinLon {
			b.MinLon = p[0]
		}
		if p[0] > b.MaxLon {
			b.MaxLon = p[0]
		}
		if p[1] < b.MinLat {
			b.MinLat = p[1]
		}
		if p[1] > b.MaxLat {
			b.MaxLat = p[1]
		}
	}
	return b, true
}
