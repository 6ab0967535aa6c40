package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/uav-deconfliction/pkg/config"
	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
	"github.com/picogrid/uav-deconfliction/pkg/logger"
	"github.com/picogrid/uav-deconfliction/pkg/observability"
	"github.com/picogrid/uav-deconfliction/pkg/report"
	"github.com/picogrid/uav-deconfliction/pkg/store"
)

var (
	cfgFile  string
	logLevel string
	logFile  string
	noColor  bool
	dbPath   string
	output   string

	// appConfig is the effective configuration, resolved before any
	// subcommand runs
	appConfig *config.Config
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deconflict",
	Short: "UAV strategic deconfliction",
	Long: `deconflict checks whether a planned drone mission can fly safely
alongside the missions already registered in shared airspace. Missions
conflict when any of their waypoints come closer than the safety buffer
while their time windows overlap.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./deconflict.yaml or $HOME/.deconflict/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this rotating file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite mission store")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(missionsCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// initConfig loads the config file, applies environment and flag overrides
// and configures logging. viper only carries the bound flags; the file itself
// is read by the config package.
func initConfig(cmd *cobra.Command, _ []string) error {
	overrides := map[string]interface{}{}
	for _, key := range []string{"log_level", "log_file", "db"} {
		if viper.IsSet(key) {
			overrides[key] = viper.GetString(key)
		}
	}
	if viper.IsSet("no_color") {
		overrides["no_color"] = viper.GetBool("no_color")
	}

	cfg, err := config.LoadConfigWithOverrides(cfgFile, overrides)
	if err != nil {
		return err
	}
	appConfig = cfg

	setupLogging(cfg)
	return nil
}

// setupLogging sends logs to stderr so stdout carries only reports
func setupLogging(cfg *config.Config) {
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetOutput(os.Stderr)
	logger.SetNoColor(cfg.Logging.NoColor || !logger.IsTerminal(os.Stderr))

	if fc, ok := cfg.LogFile(); ok {
		w := logger.NewFileWriter(fc)
		logCloser = w
		// escape codes do not belong in the file
		logger.SetOutput(io.MultiWriter(os.Stderr, w))
		logger.SetNoColor(true)
	}
}

func outputFormat() (report.Format, error) {
	return report.ParseFormat(output)
}

func reportWriter() (*report.Writer, error) {
	format, err := outputFormat()
	if err != nil {
		return nil, err
	}
	return report.NewWriter(os.Stdout, format, appConfig.Logging.NoColor || !logger.IsTerminal(os.Stdout)), nil
}

// newEngine builds an engine from the effective config with a fresh metrics
// collector. A non-negative buffer overrides the configured safety buffer.
func newEngine(buffer float64) (*deconfliction.Engine, *observability.Collector, error) {
	collector, err := observability.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, nil, err
	}

	settings := appConfig.EngineSettings(logger.WithPrefix("engine"), collector)
	if buffer >= 0 {
		settings.SafetyBuffer = buffer
	}
	e, err := deconfliction.NewEngine(settings)
	if err != nil {
		return nil, nil, err
	}
	return e, collector, nil
}

// openStore opens the configured mission store. It fails when no store path
// is configured.
func openStore() (*store.Store, error) {
	path := appConfig.Store.Path
	if path == "" {
		return nil, fmt.Errorf("no mission store configured (use --db or store.path)")
	}
	s, err := store.New(path, store.Options{BusyTimeout: appConfig.Store.BusyTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open mission store: %w", err)
	}
	return s, nil
}

func writeMetrics(collector *observability.Collector, path string) error {
	if path == "" {
		return nil
	}
	if err := collector.WriteTextfile(path); err != nil {
		return err
	}
	logger.Debugf("Wrote metrics to %s", path)
	return nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
