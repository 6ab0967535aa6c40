package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
	"github.com/picogrid/uav-deconfliction/pkg/logger"
	"github.com/picogrid/uav-deconfliction/pkg/observability"
	"github.com/picogrid/uav-deconfliction/pkg/report"
	"github.com/picogrid/uav-deconfliction/pkg/scenario"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure validation time against growing traffic",
	Long: `Bench generates random missions for each registry size, registers them on
a fresh engine and times the validation of the first mission against the rest.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntSlice("sizes", nil, "registry sizes to benchmark (default from config)")
	benchCmd.Flags().Int64("seed", 0, "random seed (default from config)")
	benchCmd.Flags().String("metrics-out", "", "write Prometheus metrics to this file")
}

func runBench(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("sizes") {
		appConfig.Bench.Sizes, _ = cmd.Flags().GetIntSlice("sizes")
	}
	if cmd.Flags().Changed("seed") {
		appConfig.Bench.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}

	collector, err := observability.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	newBenchEngine := func() (*deconfliction.Engine, error) {
		return deconfliction.NewEngine(appConfig.EngineSettings(logger.WithPrefix("bench"), collector))
	}

	bench := appConfig.Bench
	gen := scenario.DefaultGeneratorConfig()
	gen.MinWaypoints = bench.MinWaypoints
	gen.MaxWaypoints = bench.MaxWaypoints
	gen.Extent = bench.Extent
	gen.Horizon = bench.Horizon

	opts := scenario.BenchOptions{
		Sizes:     bench.Sizes,
		Seed:      bench.Seed,
		Generator: gen,
		Epoch:     now(),
	}

	bar := logger.NewProgressBar(len(bench.Sizes), "Validating")
	opts.Progress = func(scenario.BenchResult) { bar.Increment() }

	logger.Progressf("Generating %d mission sets (seed %d)", len(bench.Sizes), bench.Seed)
	results, err := scenario.RunBench(cmd.Context(), opts, newBenchEngine)
	if err != nil {
		return err
	}
	bar.Finish()

	format, err := outputFormat()
	if err != nil {
		return err
	}
	rw, err := reportWriter()
	if err != nil {
		return err
	}
	if format == report.FormatText {
		logger.LogSection("Performance Benchmark")
	}
	if err := rw.Bench(results); err != nil {
		return err
	}

	snap, err := collector.Snapshot()
	if err != nil {
		return err
	}
	if format == report.FormatText {
		fmt.Println()
		logger.LogKeyValue("Temporal checks", int(snap.TemporalChecks))
		logger.LogKeyValue("Spatial checks", int(snap.SpatialChecks))
		logger.LogKeyValue("Cache hits", int(snap.CacheHits))
		logger.LogKeyValue("Time validating", fmt.Sprintf("%.4fs", snap.ValidationSeconds))
	} else {
		logger.Infof("Totals: %.0f temporal checks, %.0f spatial checks, %.0f cache hits, %.4fs validating",
			snap.TemporalChecks, snap.SpatialChecks, snap.CacheHits, snap.ValidationSeconds)
	}

	metricsOut, _ := cmd.Flags().GetString("metrics-out")
	return writeMetrics(collector, metricsOut)
}
