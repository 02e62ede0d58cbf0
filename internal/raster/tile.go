package raster

import (
	"bytes"
	"context"
	"fmt"

	"github.com/MeKo-Tech/noisefield/internal/noise"
	"github.com/MeKo-Tech/noisefield/internal/tile"
)

// RenderTile renders one pyramid tile of src and returns it encoded in
// format. opts.Bounds is the world region covered by the z0 tile, and
// opts.Width and opts.Height give the tile size in pixels.
func RenderTile(ctx context.Context, src noise.Module2[float64], c tile.Coords, opts Options, format string) ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid tile %s", c)
	}

	opts.Bounds = c.Bound(opts.Bounds)
	img, err := Render(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to render tile %s: %w", c, err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
