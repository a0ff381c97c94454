package enrich

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kass/canopy/pkg/geom"
)

const (
	minChildren = 25
	maxChildren = 50
	dimensions  = 2

	// rtreego rejects zero-extent rectangles, so degenerate street boxes
	// are padded by a hair of a degree.
	minExtent = 1e-9
)

// streetItem wraps one street feature to implement rtreego.Spatial.
type streetItem struct {
	idx  int
	line orb.LineString
	rect *rtreego.Rect
}

func (s *streetItem) Bounds() *rtreego.Rect {
	return s.rect
}

// StreetIndex is an R-Tree over street bounding rectangles. It answers
// "which street is nearest to this tree" without scanning every street.
type StreetIndex struct {
	tree  *rtreego.Rtree
	count int
}

// NewStreetIndex indexes every LineString feature in streets by its
// bounding rectangle. Features with other geometry types are skipped.
func NewStreetIndex(streets []*geojson.Feature) (*StreetIndex, error) {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	count := 0
	for i, f := range streets {
		line, ok := f.Geometry.(orb.LineString)
		if !ok || len(line) == 0 {
			continue
		}
		b, ok := geom.Bounds(line)
		if !ok {
			continue
		}
		rect, err := rtreego.NewRect(
			rtreego.Point{b.MinLon, b.MinLat},
			[]float64{math.Max(b.Width(), minExtent), math.Max(b.Height(), minExtent)},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build rect for street %d: %w", i, err)
		}
		tree.Insert(&streetItem{idx: i, line: line, rect: rect})
		count++
	}
	return &StreetIndex{tree: tree, count: count}, nil
}

// Count returns the number of indexed streets.
func (s *StreetIndex) Count() int {
	return s.count
}

// Nearest returns the feature index and distance of the closest street
// within maxMeters of p. The R-Tree narrows the candidates by rectangle,
// then every candidate is measured exactly against its segments.
func (s *StreetIndex) Nearest(p orb.Point, maxMeters float64) (int, float64, bool) {
	dLon, dLat := geom.MetersToDegrees(maxMeters, p[1])
	rect, err := rtreego.NewRect(
		rtreego.Point{p[0] - dLon, p[1] - dLat},
		[]float64{2 * dLon, 2 * dLat},
	)
	if err != nil {
		return 0, 0, false
	}

	best := -1
	bestDist := math.Inf(1)
	for _, hit := range s.tree.SearchIntersect(rect) {
		item, ok := hit.(*streetItem)
		if !ok {
			continue
		}
		d := geom.DistanceToLine(p, item.line)
		if d < bestDist {
			bestDist = d
			best = item.idx
		}
	}
	if best < 0 || bestDist > maxMeters {
		return 0, 0, false
	}
	return best, bestDist, true
}
