package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/mbtiles"
	"github.com/MeKo-Tech/noisefield/internal/pipeline"
	"github.com/MeKo-Tech/noisefield/internal/raster"
	"github.com/MeKo-Tech/noisefield/internal/tile"
	"github.com/MeKo-Tech/noisefield/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// maxTilesZoom bounds the pyramid the tiles command writes. Deeper zoom
// levels are still available from serve with --generate-missing.
const maxTilesZoom = 16

var tilesCmd = &cobra.Command{
	Use:   "tiles",
	Short: "Render a tile pyramid of a noise field into an MBTiles archive",
	Long: `Tiles renders every tile of the zoom levels --min-zoom..--max-zoom and stores
them as PNG in an MBTiles archive. The z0 tile covers --bounds; each zoom level
halves the tile extent. The archive can be served with "noisegen serve --archive".`,
	RunE: runTiles,
}

func init() {
	rootCmd.AddCommand(tilesCmd)

	addSourceFlags(tilesCmd, "tiles")

	tilesCmd.Flags().StringP("out", "o", "noise.mbtiles", "Output MBTiles path")
	tilesCmd.Flags().String("name", "", "Tileset name stored in the archive (default: module tree)")
	tilesCmd.Flags().Int("min-zoom", 0, "Minimum zoom level")
	tilesCmd.Flags().Int("max-zoom", 3, "Maximum zoom level")
	tilesCmd.Flags().Int("tile-size", 256, "Tile size in pixels")
	tilesCmd.Flags().String("bounds", "0,0,8,8", "Region of the plane covered by the z0 tile: minX,minY,maxX,maxY")
	tilesCmd.Flags().Float32("blur", 0, "Gaussian blur sigma applied to each tile (0 disables)")
	tilesCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	tilesCmd.Flags().Bool("progress", false, "Show a progress bar")

	bindFlags(tilesCmd, "tiles", "out", "name", "min-zoom", "max-zoom", "tile-size", "bounds", "blur", "workers", "progress")
}

func runTiles(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	zooms, err := tile.NewRange(viper.GetInt("tiles.min_zoom"), viper.GetInt("tiles.max_zoom"))
	if err != nil {
		return err
	}
	if zooms.MaxZ > maxTilesZoom {
		return fmt.Errorf("max zoom %d exceeds the tiles command limit of %d", zooms.MaxZ, maxTilesZoom)
	}
	world, err := parseBounds(viper.GetString("tiles.bounds"))
	if err != nil {
		return fmt.Errorf("invalid bounds: %w", err)
	}
	size := viper.GetInt("tiles.tile_size")
	if size <= 0 {
		return fmt.Errorf("tile size must be positive, got %d", size)
	}
	workers := viper.GetInt("tiles.workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	spec, err := sourceSpec("tiles")
	if err != nil {
		return err
	}
	src, err := pipeline.BuildPlane(spec)
	if err != nil {
		return fmt.Errorf("failed to build module: %w", err)
	}

	out := viper.GetString("tiles.out")
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	name := viper.GetString("tiles.name")
	if name == "" {
		name = spec.String()
	}
	archive, err := mbtiles.New(out, mbtiles.Metadata{
		Name:        name,
		Format:      "png",
		Description: "Deterministic lattice noise",
		Pipeline:    spec.String(),
		Type:        "baselayer",
		Version:     "1.0",
		Bounds:      world,
		MinZoom:     int(zooms.MinZ),
		MaxZoom:     int(zooms.MaxZ),
		TileSize:    size,
	})
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	total := zooms.Count()
	logger.Info("Rendering tile pyramid",
		"module", spec.String(),
		"zoom", fmt.Sprintf("%d-%d", zooms.MinZ, zooms.MaxZ),
		"tiles", total,
		"tile_size", size,
		"bounds", viper.GetString("tiles.bounds"),
		"workers", workers,
		"out", out,
	)

	opts := raster.DefaultOptions()
	opts.Width, opts.Height = size, size
	opts.Bounds = world
	opts.Blur = float32(viper.GetFloat64("tiles.blur"))
	opts.Workers = 1
	opts.Logger = logger

	// Each band is a run of consecutive tile indices in the range.
	fill := worker.FillerFunc(func(ctx context.Context, band worker.Band) error {
		for i := band.Y0; i < band.Y1; i++ {
			c := zooms.At(i)
			data, err := raster.RenderTile(ctx, src, c, opts, "png")
			if err != nil {
				return err
			}
			if err := archive.WriteTile(c, data); err != nil {
				return err
			}
		}
		return nil
	})

	bands := worker.Split(total, workers*4)
	tasks := make([]worker.Task, len(bands))
	for i, b := range bands {
		tasks[i] = worker.Task{Band: b}
	}

	var progress *worker.Progress
	if viper.GetBool("tiles.progress") {
		progress = worker.NewProgress(len(tasks), "batches", true)
	}
	cfg := worker.Config{Workers: workers, Filler: fill}
	if progress != nil {
		cfg.OnProgress = progress.Callback()
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results := worker.New(cfg).Run(ctx, tasks)
	if progress != nil {
		progress.Done()
	}
	runErr := worker.FirstError(results)

	closeErr := archive.Close()
	if runErr != nil {
		return fmt.Errorf("failed to render tiles: %w", runErr)
	}
	if closeErr != nil {
		return closeErr
	}

	logger.Info("Tile pyramid written",
		"path", out,
		"tiles", total,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"zoom_levels", zooms.MaxZ-zooms.MinZ+1,
	)
	return nil
}
