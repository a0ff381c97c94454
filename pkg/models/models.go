// Package models holds the shared data types of the canopy pipeline:
// geographic bounding boxes and the tile index written next to tile files.
package models

import (
	"encoding/json"
	"fmt"
)

// BoundingBox is a geographic rectangle in WGS84 degrees.
// Invariant: MinLon <= MaxLon and MinLat <= MaxLat.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Intersects reports whether the two boxes overlap or touch on both axes.
// Boxes that share only an edge or a corner still intersect; a feature
// sitting exactly on a tile seam is assigned to both neighboring tiles.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return !(b.MaxLon < o.MinLon ||
		b.MinLon > o.MaxLon ||
		b.MaxLat < o.MinLat ||
		b.MinLat > o.MaxLat)
}

// Union returns the smallest box covering both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	if o.MinLon < b.MinLon {
		b.MinLon = o.MinLon
	}
	if o.MinLat < b.MinLat {
		b.MinLat = o.MinLat
	}
	if o.MaxLon > b.MaxLon {
		b.MaxLon = o.MaxLon
	}
	if o.MaxLat > b.MaxLat {
		b.MaxLat = o.MaxLat
	}
	return b
}

// Width returns the longitude extent in degrees.
func (b BoundingBox) Width() float64 {
	return b.MaxLon - b.MinLon
}

// Height returns the latitude extent in degrees.
func (b BoundingBox) Height() float64 {
	return b.MaxLat - b.MinLat
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f, %.4f)", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// MarshalJSON encodes the box as the [min_lon, min_lat, max_lon, max_lat]
// array used by the tile index.
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat})
}

// UnmarshalJSON decodes a [min_lon, min_lat, max_lon, max_lat] array.
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var arr [4]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	b.MinLon, b.MinLat, b.MaxLon, b.MaxLat = arr[0], arr[1], arr[2], arr[3]
	return nil
}

// TileEntry is the persisted summary of one written tile.
type TileEntry struct {
	File     string      `json:"file"`
	X        int         `json:"x"`
	Y        int         `json:"y"`
	Bounds   BoundingBox `json:"bounds"`
	Features int         `json:"features"`
	SizeKB   float64     `json:"size_kb"`
}

// TileIndex describes one complete tiling run. It is regenerated in full on
// every run; stale tiles from a previous grid configuration are the
// operator's responsibility.
type TileIndex struct {
	GridSize float64     `json:"grid_size"`
	Bounds   BoundingBox `json:"bounds"`
	Tiles    []TileEntry `json:"tiles"`
}
