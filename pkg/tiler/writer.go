package tiler

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/paulmach/orb/geojson"

	"github.com/kass/canopy/pkg/logger"
	"github.com/kass/canopy/pkg/models"
)

// IndexFile is the name of the tile index document within an output
// directory.
const IndexFile = "tiles_index.json"

// writeTiles serializes every non-empty bucket as a compact FeatureCollection
// file and then the full index. Tiles are written in (x, y) order so that
// repeated runs produce identical output.
func writeTiles(grid *Grid, buckets map[cell][]*geojson.Feature, outDir string) (*models.TileIndex, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	keys := make([]cell, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].x != keys[j].x {
			return keys[i].x < keys[j].x
		}
		return keys[i].y < keys[j].y
	})

	index := &models.TileIndex{
		GridSize: grid.CellSize,
		Bounds:   grid.Bounds,
		Tiles:    make([]models.TileEntry, 0, len(keys)),
	}

	for _, k := range keys {
		features := buckets[k]
		tileFC := geojson.NewFeatureCollection()
		tileFC.Features = features

		data, err := json.Marshal(tileFC)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tile (%d,%d): %w", k.x, k.y, err)
		}

		name := fmt.Sprintf("tile_%d_%d.json", k.x, k.y)
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write tile %s: %w", name, err)
		}

		sizeKB := math.Round(float64(len(data))/1024*10) / 10
		index.Tiles = append(index.Tiles, models.TileEntry{
			File:     name,
			X:        k.x,
			Y:        k.y,
			Bounds:   grid.CellBounds(k.x, k.y),
			Features: len(features),
			SizeKB:   sizeKB,
		})
		logger.Log.Debugf("%s: %d features, %.1f KB", name, len(features), sizeKB)
	}

	if err := writeIndex(index, outDir); err != nil {
		return nil, err
	}

	var totalKB float64
	for _, e := range index.Tiles {
		totalKB += e.SizeKB
	}
	logger.Log.Infof("wrote %d tiles, %.1f KB total", len(index.Tiles), totalKB)
	return index, nil
}

// writeIndex persists the pretty-printed index document. The index is
// regenerated in full on every run, never merged with a previous one.
func writeIndex(index *models.TileIndex, outDir string) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tile index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, IndexFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write tile index: %w", err)
	}
	return nil
}

// ReadIndex loads a previously written index document.
func ReadIndex(outDir string) (*models.TileIndex, error) {
	data, err := os.ReadFile(filepath.Join(outDir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read tile index: %w", err)
	}
	var index models.TileIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse tile index: %w", err)
	}
	return &index, nil
}

// LoadCollection reads a GeoJSON FeatureCollection from disk.
func LoadCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return fc, nil
}

// SaveCollection writes a FeatureCollection to disk as compact GeoJSON.
func SaveCollection(fc *geojson.FeatureCollection, path string) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
