// Package tile addresses square tiles of a noise field in a z/x/y pyramid.
//
// Zoom level z splits the world region into 2^z by 2^z tiles. Row 0 holds the
// tiles at the world's minimum Y, matching the row order of rendered fields.
package tile

import (
	"fmt"

	"github.com/paulmach/orb"
)

// MaxZoom bounds the pyramid depth so that tile counts stay within int range.
const MaxZoom = 24

// Coords represents a tile coordinate in the pyramid (z/x/y).
type Coords struct {
	Z uint32 // Zoom level (0-MaxZoom)
	X uint32 // X coordinate (column)
	Y uint32 // Y coordinate (row)
}

// String returns the tile coordinate as a string in format "z{zoom}_x{x}_y{y}"
func (c Coords) String() string {
	return fmt.Sprintf("z%d_x%d_y%d", c.Z, c.X, c.Y)
}

// Path returns the file path for this tile
func (c Coords) Path(extension string) string {
	return fmt.Sprintf("%s.%s", c.String(), extension)
}

// Valid reports whether the coordinate lies inside its zoom level.
func (c Coords) Valid() bool {
	if c.Z > MaxZoom {
		return false
	}
	n := uint32(1) << c.Z
	return c.X < n && c.Y < n
}

// Bound returns the region of world covered by this tile.
func (c Coords) Bound(world orb.Bound) orb.Bound {
	n := float64(uint32(1) << c.Z)
	w := (world.Max.X() - world.Min.X()) / n
	h := (world.Max.Y() - world.Min.Y()) / n

	minX := world.Min.X() + float64(c.X)*w
	minY := world.Min.Y() + float64(c.Y)*h
	return orb.Bound{
		Min: orb.Point{minX, minY},
		Max: orb.Point{minX + w, minY + h},
	}
}

// Parent returns the tile one zoom level up that contains c.
func (c Coords) Parent() Coords {
	if c.Z == 0 {
		return c
	}
	return Coords{Z: c.Z - 1, X: c.X / 2, Y: c.Y / 2}
}

// NewCoords creates a new Coords from zoom, x, y values
func NewCoords(z, x, y uint32) Coords {
	return Coords{Z: z, X: x, Y: y}
}

// ParseCoords parses a tile string like "z3_x5_y2" into Coords
func ParseCoords(s string) (Coords, error) {
	var c Coords
	_, err := fmt.Sscanf(s, "z%d_x%d_y%d", &c.Z, &c.X, &c.Y)
	if err != nil {
		return c, fmt.Errorf("invalid tile coordinate format: %s", s)
	}
	if !c.Valid() {
		return c, fmt.Errorf("tile coordinate out of range: %s", s)
	}
	return c, nil
}

// Range represents every tile of the zoom levels MinZ..MaxZ.
type Range struct {
	MinZ, MaxZ uint32
}

// ForEach calls the given function for each tile in the range, zoom by zoom
// and row by row.
func (r Range) ForEach(fn func(Coords)) {
	for z := r.MinZ; z <= r.MaxZ; z++ {
		n := uint32(1) << z
		for y := uint32(0); y < n; y++ {
			for x := uint32(0); x < n; x++ {
				fn(NewCoords(z, x, y))
			}
		}
	}
}

// Count returns the total number of tiles in this range.
// This is useful for progress estimation without allocating the full tile list.
func (r Range) Count() int {
	count := 0
	for z := r.MinZ; z <= r.MaxZ; z++ {
		count += 1 << (2 * z)
	}
	return count
}

// At returns the i-th tile in ForEach order, for 0 <= i < Count().
func (r Range) At(i int) Coords {
	for z := r.MinZ; z <= r.MaxZ; z++ {
		n := 1 << (2 * z)
		if i < n {
			side := 1 << z
			return NewCoords(z, uint32(i%side), uint32(i/side))
		}
		i -= n
	}
	panic(fmt.Sprintf("tile index out of range %v", r))
}

// Tiles returns all tile coordinates in the range.
func (r Range) Tiles() []Coords {
	tiles := make([]Coords, 0, r.Count())
	r.ForEach(func(c Coords) {
		tiles = append(tiles, c)
	})
	return tiles
}

// NewRange validates a zoom range.
func NewRange(minZ, maxZ int) (Range, error) {
	if minZ < 0 || maxZ > MaxZoom || minZ > maxZ {
		return Range{}, fmt.Errorf("invalid zoom range %d-%d (allowed 0-%d)", minZ, maxZ, MaxZoom)
	}
	return Range{MinZ: uint32(minZ), MaxZ: uint32(maxZ)}, nil
}
