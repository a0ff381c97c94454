// Package tiler partitions a GeoJSON FeatureCollection into a fixed-size
// degree grid and writes one file per non-empty tile plus an index document.
package tiler

import (
	"errors"
	"time"

	"github.com/paulmach/orb/geojson"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/kass/canopy/pkg/geom"
	"github.com/kass/canopy/pkg/logger"
	"github.com/kass/canopy/pkg/models"
)

// Tiler holds the settings of one tiling run. A single run is synchronous
// and single-threaded; all tile buckets live in memory until written.
type Tiler struct {
	// GridSize is the cell edge in degrees.
	GridSize float64
	// Progress renders a terminal progress bar over the assignment loop,
	// the slowest step on large inputs.
	Progress bool
}

// New returns a Tiler with the given grid cell size.
func New(gridSize float64) *Tiler {
	return &Tiler{GridSize: gridSize}
}

type cell struct {
	x, y int
}

// assign buckets every feature into each grid cell its bounding box
// intersects. Features with unsupported geometry get no bucket at all;
// the tile seam policy duplicates features that touch a cell edge into
// both neighbors.
func (t *Tiler) assign(fc *geojson.FeatureCollection) (*Grid, map[cell][]*geojson.Feature, error) {
	if fc == nil || len(fc.Features) == 0 {
		return nil, nil, errors.New("input contains no features")
	}

	boxes := make([]models.BoundingBox, len(fc.Features))
	valid := make([]bool, len(fc.Features))
	var overall models.BoundingBox
	found := false
	skipped := 0

	for i, f := range fc.Features {
		b, ok := geom.Bounds(f.Geometry)
		if !ok {
			skipped++
			continue
		}
		boxes[i] = b
		valid[i] = true
		if !found {
			overall = b
			found = true
		} else {
			overall = overall.Union(b)
		}
	}

	if skipped > 0 {
		// Data-quality signal, not a failure: the tiler only understands
		// Point, LineString and Polygon.
		logger.Log.Warnf("excluded %d features with unsupported geometry", skipped)
	}
	if !found {
		return nil, nil, errors.New("no feature has a supported geometry, cannot derive grid bounds")
	}

	grid, err := NewGrid(overall, t.GridSize)
	if err != nil {
		return nil, nil, err
	}
	logger.Log.Infof("bounds %s, grid %d x %d", overall, grid.Cols(), grid.Rows())

	var bar *pb.ProgressBar
	if t.Progress {
		bar = pb.New(len(fc.Features)).Prefix("assign: ")
		bar.SetRefreshRate(time.Second)
		bar.Start()
	}

	buckets := make(map[cell][]*geojson.Feature)
	for i, f := range fc.Features {
		if bar != nil {
			bar.Increment()
		}
		if !valid[i] {
			continue
		}
		x0, x1, y0, y1 := grid.candidateRange(boxes[i])
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				if boxes[i].Intersects(grid.CellBounds(x, y)) {
					key := cell{x, y}
					buckets[key] = append(buckets[key], f)
				}
			}
		}
	}
	if bar != nil {
		bar.Finish()
	}

	return grid, buckets, nil
}

// Run tiles the collection into outDir and returns the written index.
// The output directory is created if absent; stale tiles from an earlier
// grid configuration are left in place.
func (t *Tiler) Run(fc *geojson.FeatureCollection, outDir string) (*models.TileIndex, error) {
	grid, buckets, err := t.assign(fc)
	if err != nil {
		return nil, err
	}
	return writeTiles(grid, buckets, outDir)
}
