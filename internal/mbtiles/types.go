// Package mbtiles stores rendered noise tile pyramids in MBTiles (SQLite) archives.
package mbtiles

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ErrTileNotFound is returned when an archive holds no data for a tile.
var ErrTileNotFound = errors.New("tile not found")

// Metadata contains MBTiles metadata fields.
type Metadata struct {
	Name        string    // Human-readable tileset identifier
	Format      string    // Tile data type (png, bmp, tiff)
	Description string    // Human-readable description
	Pipeline    string    // Module tree the tiles were sampled from
	Type        string    // "baselayer" or "overlay"
	Version     string    // Version string
	Bounds      orb.Bound // Sampled world region of the z0 tile
	MinZoom     int
	MaxZoom     int
	TileSize    int // Tile edge in pixels
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := map[string]string{
		"minzoom": strconv.Itoa(m.MinZoom),
		"maxzoom": strconv.Itoa(m.MaxZoom),
	}

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Format != "" {
		result["format"] = m.Format
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Pipeline != "" {
		result["pipeline"] = m.Pipeline
	}
	if m.Type != "" {
		result["type"] = m.Type
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if m.TileSize > 0 {
		result["tilesize"] = strconv.Itoa(m.TileSize)
	}
	if !m.Bounds.IsZero() {
		result["bounds"] = fmt.Sprintf("%g,%g,%g,%g",
			m.Bounds.Min.X(), m.Bounds.Min.Y(), m.Bounds.Max.X(), m.Bounds.Max.Y())
	}

	return result
}

// fromMap is the inverse of ToMap. Malformed numeric fields are left zero.
func fromMap(values map[string]string) Metadata {
	meta := Metadata{
		Name:        values["name"],
		Format:      values["format"],
		Description: values["description"],
		Pipeline:    values["pipeline"],
		Type:        values["type"],
		Version:     values["version"],
	}

	atoi := func(key string) int {
		i, _ := strconv.Atoi(values[key]) // nolint:errcheck
		return i
	}
	meta.MinZoom = atoi("minzoom")
	meta.MaxZoom = atoi("maxzoom")
	meta.TileSize = atoi("tilesize")

	// "minX,minY,maxX,maxY"
	if v, ok := values["bounds"]; ok {
		parts := strings.Split(v, ",")
		if len(parts) == 4 {
			var f [4]float64
			valid := true
			for i, part := range parts {
				n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
				if err != nil {
					valid = false
					break
				}
				f[i] = n
			}
			if valid {
				meta.Bounds = orb.Bound{Min: orb.Point{f[0], f[1]}, Max: orb.Point{f[2], f[3]}}
			}
		}
	}

	return meta
}
