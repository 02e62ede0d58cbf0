//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/MeKo-Tech/noisefield/internal/pipeline"
	"github.com/MeKo-Tech/noisefield/internal/raster"
	"github.com/MeKo-Tech/noisefield/internal/tile"
	"github.com/paulmach/orb"
)

// RenderTileRequest represents a tile render request from JS
type RenderTileRequest struct {
	Pipeline pipeline.Spec `json:"pipeline"`
	Bounds   [4]float64    `json:"bounds"` // z0 region: minX,minY,maxX,maxY
	Zoom     uint32        `json:"zoom"`
	X        uint32        `json:"x"`
	Y        uint32        `json:"y"`
	Size     int           `json:"size"`
	HiDPI    bool          `json:"hidpi"`
}

type RenderTileResponse struct {
	Key  string `json:"key"`
	PNG  string `json:"png"` // base64
	Tree string `json:"tree"`
}

// renderTile is called from JavaScript with a JSON request and returns the
// tile as a base64 PNG, or an object with an "error" field.
func renderTile(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue("missing arguments")
	}

	var req RenderTileRequest
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return errorValue(fmt.Sprintf("failed to parse request: %v", err))
	}

	src, err := pipeline.BuildPlane(req.Pipeline)
	if err != nil {
		return errorValue(err.Error())
	}

	opts := raster.DefaultOptions()
	if req.Bounds != [4]float64{} {
		opts.Bounds = orb.Bound{
			Min: orb.Point{req.Bounds[0], req.Bounds[1]},
			Max: orb.Point{req.Bounds[2], req.Bounds[3]},
		}
	}
	size := req.Size
	if size <= 0 {
		size = 256
	}
	suffix := ""
	if req.HiDPI {
		size *= 2
		suffix = "@2x"
	}
	opts.Width, opts.Height = size, size
	opts.Workers = 1

	c := tile.NewCoords(req.Zoom, req.X, req.Y)
	data, err := raster.RenderTile(context.Background(), src, c, opts, "png")
	if err != nil {
		return errorValue(err.Error())
	}

	return toValue(RenderTileResponse{
		Key:  c.String() + suffix,
		PNG:  base64.StdEncoding.EncodeToString(data),
		Tree: req.Pipeline.String(),
	})
}

// moduleTypes lists the module names accepted in a pipeline.
func moduleTypes(this js.Value, args []js.Value) interface{} {
	out := make([]interface{}, 0, len(pipeline.Types)+1)
	for _, t := range pipeline.Types {
		out = append(out, t)
	}
	return append(out, "classic")
}

func toValue(resp RenderTileResponse) map[string]interface{} {
	return map[string]interface{}{
		"key":  resp.Key,
		"png":  resp.PNG,
		"tree": resp.Tree,
	}
}

func errorValue(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}

func main() {
	c := make(chan struct{})

	js.Global().Set("noisefieldRenderTile", js.FuncOf(renderTile))
	js.Global().Set("noisefieldModuleTypes", js.FuncOf(moduleTypes))

	fmt.Println("noisefield WASM module loaded")
	<-c
}
