package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/MeKo-Tech/noisefield/internal/noise"
	"github.com/MeKo-Tech/noisefield/internal/pipeline"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addSourceFlags registers the flags describing a single-module field and
// binds them to "<prefix>.<name>" viper keys.
func addSourceFlags(cmd *cobra.Command, prefix string) {
	cmd.Flags().StringP("module", "m", "ridged", "Module type (perlin, opensimplex, classic, fbm, billow, ridged, hybrid, basic)")
	cmd.Flags().Int64("seed", 0, "Seed of the permutation table")
	cmd.Flags().Int("octaves", noise.DefaultOctaves, "Octave count for fractal modules (1-32)")
	cmd.Flags().Float64("frequency", noise.DefaultFrequency, "Frequency of the first octave")
	cmd.Flags().Float64("lacunarity", noise.DefaultLacunarity, "Frequency multiplier between octaves")
	cmd.Flags().Float64("persistence", 0, "Amplitude multiplier between octaves (default depends on the module)")
	cmd.Flags().Float64("gain", noise.DefaultGain, "Ridge weight gain (ridged only)")
	cmd.Flags().Int("period", 0, "Lattice period for seamless tiling (0 disables)")

	bindFlags(cmd, prefix, "module", "seed", "octaves", "frequency", "lacunarity", "persistence", "gain", "period")
}

// addGridFlags registers the sampling grid flags shared by render and stats.
func addGridFlags(cmd *cobra.Command, prefix string) {
	cmd.Flags().Int("width", 512, "Image width in pixels")
	cmd.Flags().Int("height", 512, "Image height in pixels")
	cmd.Flags().String("bounds", "0,0,8,8", "Sampled region of the plane: minX,minY,maxX,maxY")
	cmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")

	bindFlags(cmd, prefix, "width", "height", "bounds", "workers")
}

func bindFlags(cmd *cobra.Command, prefix string, names ...string) {
	for _, name := range names {
		key := prefix + "." + strings.ReplaceAll(name, "-", "_")
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}
}

// sourceSpec returns the module tree to sample: the pipeline file when one
// is given, the "pipeline" config section when present, and otherwise a
// single module described by the <prefix>.* flags.
func sourceSpec(prefix string) (pipeline.Spec, error) {
	if path := viper.GetString("pipeline_file"); path != "" {
		return pipeline.Load(path)
	}
	if viper.IsSet("pipeline.type") {
		return pipeline.Decode(viper.GetViper(), "pipeline")
	}

	key := func(name string) string { return prefix + "." + name }
	spec := pipeline.Spec{
		Type: viper.GetString(key("module")),
		Seed: ptr(viper.GetInt64(key("seed"))),
	}
	if viper.IsSet(key("octaves")) {
		spec.Octaves = ptr(viper.GetInt(key("octaves")))
	}
	if viper.IsSet(key("frequency")) {
		spec.Frequency = ptr(viper.GetFloat64(key("frequency")))
	}
	if viper.IsSet(key("lacunarity")) {
		spec.Lacunarity = ptr(viper.GetFloat64(key("lacunarity")))
	}
	if viper.IsSet(key("persistence")) {
		spec.Persistence = ptr(viper.GetFloat64(key("persistence")))
	}
	if viper.IsSet(key("gain")) {
		spec.Gain = ptr(viper.GetFloat64(key("gain")))
	}
	if p := viper.GetInt(key("period")); p > 0 {
		spec.Period = ptr(p)
	}
	return spec, nil
}

func ptr[T any](v T) *T { return &v }

// parseBounds parses "minX,minY,maxX,maxY" into a bound.
func parseBounds(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}

	var v [4]float64
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("invalid number at position %d: %w", i, err)
		}
		v[i] = val
	}

	if v[0] >= v[2] {
		return orb.Bound{}, fmt.Errorf("minX (%.4f) must be < maxX (%.4f)", v[0], v[2])
	}
	if v[1] >= v[3] {
		return orb.Bound{}, fmt.Errorf("minY (%.4f) must be < maxY (%.4f)", v[1], v[3])
	}

	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
