package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/mbtiles"
	"github.com/MeKo-Tech/noisefield/internal/noise"
	"github.com/MeKo-Tech/noisefield/internal/pipeline"
	"github.com/MeKo-Tech/noisefield/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve noise tiles over HTTP (from an archive or rendered on demand)",
	Long: `Serve answers /tiles/z{z}_x{x}_y{y}.png (and @2x variants) with PNG tiles of a
noise field. With --archive, tiles are read from an MBTiles file written by
"noisegen tiles"; missing tiles are rendered only when --generate-missing is set.
/status reports render counters as JSON and /healthz answers "ok".`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addSourceFlags(serveCmd, "serve")

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("archive", "", "MBTiles archive to serve tiles from")
	serveCmd.Flags().Bool("generate-missing", false, "Render tiles missing from the archive")
	serveCmd.Flags().String("bounds", "0,0,8,8", "Region of the plane covered by the z0 tile: minX,minY,maxX,maxY")
	serveCmd.Flags().Int("tile-size", 256, "Base tile size in pixels (@2x requests render twice as large)")
	serveCmd.Flags().Float32("blur", 0, "Gaussian blur sigma applied to each tile (0 disables)")
	serveCmd.Flags().Int("cache-size", 1024, "Number of rendered tiles kept in memory (0 disables)")
	serveCmd.Flags().Int("max-concurrent-generations", runtime.NumCPU(), "Max concurrent tile generations")
	serveCmd.Flags().Duration("generation-timeout", 30*time.Second, "Timeout per tile generation")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for served tiles")

	bindFlags(serveCmd, "serve", "addr", "archive", "generate-missing", "bounds", "tile-size", "blur",
		"cache-size", "max-concurrent-generations", "generation-timeout", "cache-control")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	world, err := parseBounds(viper.GetString("serve.bounds"))
	if err != nil {
		return fmt.Errorf("invalid bounds: %w", err)
	}

	var archive *mbtiles.Reader
	if path := viper.GetString("serve.archive"); path != "" {
		if archive, err = mbtiles.OpenReader(path); err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer archive.Close()

		meta, err := archive.Metadata()
		if err != nil {
			return err
		}
		if !meta.Bounds.IsZero() && !viper.IsSet("serve.bounds") {
			world = meta.Bounds
		}
		logger.Info("Serving archive", "path", path, "name", meta.Name, "pipeline", meta.Pipeline,
			"zoom", fmt.Sprintf("%d-%d", meta.MinZoom, meta.MaxZoom))
	}

	generateMissing := viper.GetBool("serve.generate_missing")
	var src noise.Module2[float64]
	if archive == nil || generateMissing {
		spec, err := sourceSpec("serve")
		if err != nil {
			return err
		}
		if src, err = pipeline.BuildPlane(spec); err != nil {
			return fmt.Errorf("failed to build module: %w", err)
		}
		logger.Info("Rendering tiles on demand", "module", spec.String())
	}

	tiles, err := server.NewTiles(src, archive, server.TilesConfig{
		World:                    world,
		BaseTileSize:             viper.GetInt("serve.tile_size"),
		Blur:                     float32(viper.GetFloat64("serve.blur")),
		CacheControl:             viper.GetString("serve.cache_control"),
		MaxConcurrentGenerations: viper.GetInt("serve.max_concurrent_generations"),
		GenerationTimeout:        viper.GetDuration("serve.generation_timeout"),
		GenerateMissing:          generateMissing,
		CacheSize:                viper.GetInt("serve.cache_size"),
	}, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/status", withCORS(tiles.StatusHandler()))
	mux.Handle("/tiles/", withCORS(tiles.Handler()))

	addr := viper.GetString("serve.addr")
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, cancel := signalContext()
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("Tile server listening", "addr", addr, "archive", archive != nil, "generate_missing", generateMissing)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Tile server stopped")
	return nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
