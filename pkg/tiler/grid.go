package tiler

import (
	"fmt"
	"math"

	"github.com/kass/canopy/pkg/models"
)

// Grid is a rectangular tiling of a dataset's bounding box. Cells start at
// the minimum corner and advance by CellSize; the last row and column may
// extend past the dataset's maximum. Cell (0,0) is the south-west corner,
// x grows eastward and y northward.
type Grid struct {
	Bounds   models.BoundingBox
	CellSize float64

	// Cell origin coordinates, built by repeated addition so that cell
	// bounds are bit-identical across runs.
	lonEdges []float64
	latEdges []float64
}

// NewGrid constructs a grid covering the given bounds. A degenerate box
// (a single point dataset) still yields a 1x1 grid.
func NewGrid(bounds models.BoundingBox, cellSize float64) (*Grid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("grid cell size must be positive, got %v", cellSize)
	}

	g := &Grid{Bounds: bounds, CellSize: cellSize}
	for lon := bounds.MinLon; lon < bounds.MaxLon; lon += cellSize {
		g.lonEdges = append(g.lonEdges, lon)
	}
	for lat := bounds.MinLat; lat < bounds.MaxLat; lat += cellSize {
		g.latEdges = append(g.latEdges, lat)
	}
	if len(g.lonEdges) == 0 {
		g.lonEdges = []float64{bounds.MinLon}
	}
	if len(g.latEdges) == 0 {
		g.latEdges = []float64{bounds.MinLat}
	}
	return g, nil
}

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return len(g.lonEdges) }

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return len(g.latEdges) }

// CellBounds returns the fixed bounding box of cell (x, y).
func (g *Grid) CellBounds(x, y int) models.BoundingBox {
	return models.BoundingBox{
		MinLon: g.lonEdges[x],
		MinLat: g.latEdges[y],
		MaxLon: g.lonEdges[x] + g.CellSize,
		MaxLat: g.latEdges[y] + g.CellSize,
	}
}

// candidateRange returns an inclusive cell index range guaranteed to contain
// every cell the box can intersect. The range is derived from the box and
// the grid origin, then widened by one cell on each side so that seam and
// rounding cases are settled by the exact Intersects test, not here.
func (g *Grid) candidateRange(b models.BoundingBox) (x0, x1, y0, y1 int) {
	x0 = int(math.Floor((b.MinLon-g.Bounds.MinLon)/g.CellSize)) - 1
	x1 = int(math.Floor((b.MaxLon-g.Bounds.MinLon)/g.CellSize)) + 1
	y0 = int(math.Floor((b.MinLat-g.Bounds.MinLat)/g.CellSize)) - 1
	y1 = int(math.Floor((b.MaxLat-g.Bounds.MinLat)/g.CellSize)) + 1

	x0 = clamp(x0, 0, g.Cols()-1)
	x1 = clamp(x1, 0, g.Cols()-1)
	y0 = clamp(y0, 0, g.Rows()-1)
	y1 = clamp(y1, 0, g.Rows()-1)
	return x0, x1, y0, y1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
