package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/noisefield/internal/pipeline"
	"github.com/MeKo-Tech/noisefield/internal/raster"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Sample a noise field and report its value distribution",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	addSourceFlags(statsCmd, "stats")
	addGridFlags(statsCmd, "stats")

	statsCmd.Flags().Bool("strict", false, "Fail when any sample lies outside [-1, 1]")
	bindFlags(statsCmd, "stats", "strict")
}

func runStats(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	opts, err := gridOptions("stats")
	if err != nil {
		return err
	}

	spec, err := sourceSpec("stats")
	if err != nil {
		return err
	}
	src, err := pipeline.BuildPlane(spec)
	if err != nil {
		return fmt.Errorf("failed to build module: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	field, err := raster.Sample(ctx, src, opts)
	if err != nil {
		return fmt.Errorf("failed to sample field: %w", err)
	}

	summary := raster.Summarize(field.Values)
	logger.Info("Field statistics", "module", spec.String(), "summary", summary)

	if viper.GetBool("stats.strict") && summary.OutOfRange > 0 {
		return fmt.Errorf("%d of %d samples outside [-1, 1]", summary.OutOfRange, summary.Count)
	}
	return nil
}
