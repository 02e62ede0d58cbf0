package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/pipeline"
	"github.com/MeKo-Tech/noisefield/internal/raster"
	"github.com/MeKo-Tech/noisefield/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a noise field to an image",
	Long: `Render samples a noise field on a pixel grid and writes it as a grayscale image.

Values in [-1, 1] map to gray levels 0..255. To get a seamless tile, give the field
a period and choose bounds that span exactly one period, for example
--period 4 --bounds 0,0,4,4.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	addSourceFlags(renderCmd, "render")
	addGridFlags(renderCmd, "render")

	renderCmd.Flags().StringP("out", "o", "noise.png", "Output image path")
	renderCmd.Flags().String("format", "", "Image format: png, bmp or tiff (default: from --out extension)")
	renderCmd.Flags().Float32("blur", 0, "Gaussian blur sigma applied after sampling (0 disables)")
	renderCmd.Flags().Bool("progress", false, "Show a progress bar while sampling")

	bindFlags(renderCmd, "render", "out", "format", "blur", "progress")
}

func runRender(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	out := viper.GetString("render.out")
	format := viper.GetString("render.format")
	if format == "" {
		var err error
		if format, err = raster.FormatFromPath(out); err != nil {
			return err
		}
	}

	opts, err := gridOptions("render")
	if err != nil {
		return err
	}
	opts.Blur = float32(viper.GetFloat64("render.blur"))

	spec, err := sourceSpec("render")
	if err != nil {
		return err
	}
	src, err := pipeline.BuildPlane(spec)
	if err != nil {
		return fmt.Errorf("failed to build module: %w", err)
	}

	logger.Info("Rendering field",
		"module", spec.String(),
		"width", opts.Width,
		"height", opts.Height,
		"bounds", viper.GetString("render.bounds"),
		"workers", opts.Workers,
		"out", out,
		"format", format,
	)

	var progress *worker.Progress
	if viper.GetBool("render.progress") {
		progress = worker.NewProgress(0, "bands", true)
		opts.OnProgress = progress.Callback()
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	img, err := raster.Render(ctx, src, opts)
	if progress != nil {
		progress.Done()
	}
	if err != nil {
		return fmt.Errorf("failed to render field: %w", err)
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := raster.Encode(f, img, format); err != nil {
		f.Close() // nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	logger.Info("Field rendered", "path", out, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// gridOptions reads the sampling grid for the command under prefix.
func gridOptions(prefix string) (raster.Options, error) {
	bounds, err := parseBounds(viper.GetString(prefix + ".bounds"))
	if err != nil {
		return raster.Options{}, fmt.Errorf("invalid bounds: %w", err)
	}

	workers := viper.GetInt(prefix + ".workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	opts := raster.DefaultOptions()
	opts.Width = viper.GetInt(prefix + ".width")
	opts.Height = viper.GetInt(prefix + ".height")
	opts.Bounds = bounds
	opts.Workers = workers
	opts.Logger = logger
	return opts, nil
}
