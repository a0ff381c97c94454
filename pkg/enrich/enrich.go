// Package enrich joins tree features to their nearest street and derives a
// per-street tree-density metric: trees within 20 m of a street, counted and
// normalized per 100 m of street length. Tree rows are interpolated into
// individual tree points before the join.
package enrich

import (
	"errors"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/kass/canopy/pkg/geom"
	"github.com/kass/canopy/pkg/logger"
)

// Options control one enrichment run.
type Options struct {
	// MaxTreeDistance is the join threshold in meters.
	MaxTreeDistance float64
	// TreeRowSpacing is the interpolation interval in meters for
	// natural=tree_row lines.
	TreeRowSpacing float64
	// Progress renders a terminal progress bar over the join loop.
	Progress bool
}

// DefaultOptions mirror the thresholds the dataset was calibrated with.
func DefaultOptions() Options {
	return Options{
		MaxTreeDistance: 20.0,
		TreeRowSpacing:  10.0,
	}
}

// Result is the output of one enrichment run: the two collections the tiler
// consumes, plus join statistics.
type Result struct {
	Streets *geojson.FeatureCollection
	Trees   *geojson.FeatureCollection
	// Matched is the number of tree points joined to a street.
	Matched int
}

// Enrich computes tree counts and densities for every street and flattens
// the tree set into pure points. The inputs are never mutated.
func Enrich(streets, trees *geojson.FeatureCollection, opts Options) (*Result, error) {
	if streets == nil || len(streets.Features) == 0 {
		return nil, errors.New("no street features to enrich")
	}
	if opts.MaxTreeDistance <= 0 || opts.TreeRowSpacing <= 0 {
		return nil, errors.New("enrichment thresholds must be positive")
	}

	treePoints := ExpandTreeRows(trees, opts.TreeRowSpacing)
	logger.Log.Infof("%d tree points after row interpolation", len(treePoints))

	index, err := NewStreetIndex(streets.Features)
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("indexed %d streets", index.Count())

	var bar *pb.ProgressBar
	if opts.Progress {
		bar = pb.New(len(treePoints)).Prefix("join: ")
		bar.SetRefreshRate(time.Second)
		bar.Start()
	}

	counts := make([]int, len(streets.Features))
	matched := 0
	for _, tree := range treePoints {
		if bar != nil {
			bar.Increment()
		}
		p, ok := tree.Geometry.(orb.Point)
		if !ok {
			continue
		}
		if idx, _, ok := index.Nearest(p, opts.MaxTreeDistance); ok {
			counts[idx]++
			matched++
		}
	}
	if bar != nil {
		bar.Finish()
	}
	logger.Log.Infof("matched %d of %d tree points within %.0f m of a street",
		matched, len(treePoints), opts.MaxTreeDistance)

	outStreets := geojson.NewFeatureCollection()
	for i, f := range streets.Features {
		line, ok := f.Geometry.(orb.LineString)
		if !ok {
			continue
		}
		length := geom.Length(line)
		density := 0.0
		if length > 0 {
			density = float64(counts[i]) / (length / 100.0)
		}

		nf := geojson.NewFeature(line)
		nf.Properties = geojson.Properties{
			"name":             f.Properties["name"],
			"surface":          SimplifySurface(stringProp(f, "surface")),
			"density_per_100m": density,
			"tree_count":       counts[i],
			"highway":          f.Properties["highway"],
		}
		outStreets.Append(nf)
	}

	outTrees := geojson.NewFeatureCollection()
	for _, tree := range treePoints {
		nf := geojson.NewFeature(tree.Geometry)
		nf.Properties = geojson.Properties{
			"natural": tree.Properties["natural"],
		}
		outTrees.Append(nf)
	}

	return &Result{Streets: outStreets, Trees: outTrees, Matched: matched}, nil
}

// ExpandTreeRows flattens a tree collection into point features. Point
// features pass through unchanged; tree-row LineStrings emit one generated
// point every spacing meters (at least one interval, endpoints included),
// tagged natural=tree_generated_from_row. Other geometries are dropped.
func ExpandTreeRows(trees *geojson.FeatureCollection, spacing float64) []*geojson.Feature {
	if trees == nil {
		return nil
	}
	var out []*geojson.Feature
	for _, f := range trees.Features {
		switch g := f.Geometry.(type) {
		case orb.Point:
			out = append(out, f)
		case orb.LineString:
			length := geom.Length(g)
			if length <= 0 {
				continue
			}
			n := int(length / spacing)
			if n < 1 {
				n = 1
			}
			step := length / float64(n)
			for i := 0; i <= n; i++ {
				nf := geojson.NewFeature(geom.Interpolate(g, step*float64(i)))
				nf.Properties = geojson.Properties{"natural": "tree_generated_from_row"}
				out = append(out, nf)
			}
		}
	}
	return out
}

func stringProp(f *geojson.Feature, key string) string {
	if v, ok := f.Properties[key].(string); ok {
		return v
	}
	return ""
}
