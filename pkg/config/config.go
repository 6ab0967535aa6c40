package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
	"github.com/picogrid/uav-deconfliction/pkg/logger"
)

// Config holds the complete deconfliction tool configuration
type Config struct {
	// Engine behavior
	Engine EngineConfig `yaml:"engine"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Persistent mission store
	Store StoreConfig `yaml:"store"`

	// Scenario discovery
	Scenarios ScenariosConfig `yaml:"scenarios"`

	// Performance benchmark
	Bench BenchConfig `yaml:"bench"`
}

// EngineConfig configures the deconfliction engine
type EngineConfig struct {
	SafetyBuffer     float64 `yaml:"safety_buffer"` // meters
	MaxMissions      int     `yaml:"max_missions"`
	PruneMode        string  `yaml:"prune_mode"` // "interval", "boundary"
	GradedSeverity   bool    `yaml:"graded_severity"`
	BatchConcurrency int     `yaml:"batch_concurrency,omitempty"`
}

// LoggingConfig configures console and file logging
type LoggingConfig struct {
	Level      string `yaml:"level"` // "debug", "info", "warn", "error"
	NoColor    bool   `yaml:"no_color"`
	ShowTime   bool   `yaml:"show_time"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// StoreConfig configures the SQLite mission store
type StoreConfig struct {
	Path        string        `yaml:"path,omitempty"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ScenariosConfig lists directories searched for scenario files
type ScenariosConfig struct {
	Dirs []string `yaml:"dirs"`
}

// BenchConfig configures the performance benchmark
type BenchConfig struct {
	Sizes        []int         `yaml:"sizes"`
	MinWaypoints int           `yaml:"min_waypoints"`
	MaxWaypoints int           `yaml:"max_waypoints"`
	Horizon      time.Duration `yaml:"horizon"`
	Extent       float64       `yaml:"extent"` // meters from origin on x and y
	Seed         int64         `yaml:"seed"`
}

var (
	validLevels     = []string{"debug", "info", "warn", "error"}
	validPruneModes = []string{string(deconfliction.PruneInterval), string(deconfliction.PruneBoundary)}
)

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			SafetyBuffer: deconfliction.DefaultSafetyBuffer,
			MaxMissions:  deconfliction.DefaultMaxMissions,
			PruneMode:    string(deconfliction.PruneInterval),
		},
		Logging: LoggingConfig{
			Level:      "info",
			ShowTime:   true,
			MaxSizeMB:  32,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Store: StoreConfig{
			BusyTimeout: 5 * time.Second,
		},
		Scenarios: ScenariosConfig{
			Dirs: []string{"scenarios"},
		},
		Bench: BenchConfig{
			Sizes:        []int{10, 50, 100, 500, 1000},
			MinWaypoints: 3,
			MaxWaypoints: 10,
			Horizon:      2 * time.Hour,
			Extent:       1000,
			Seed:         1,
		},
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Engine.SafetyBuffer < 0 {
		return fmt.Errorf("engine.safety_buffer must not be negative")
	}
	if c.Engine.MaxMissions <= 0 {
		return fmt.Errorf("engine.max_missions must be positive")
	}
	if !contains(validPruneModes, c.Engine.PruneMode) {
		return fmt.Errorf("engine.prune_mode must be one of %v", validPruneModes)
	}
	if c.Engine.BatchConcurrency < 0 {
		return fmt.Errorf("engine.batch_concurrency must not be negative")
	}

	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v", validLevels)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("logging rotation settings must not be negative")
	}

	if c.Store.BusyTimeout < 0 {
		return fmt.Errorf("store.busy_timeout must not be negative")
	}

	if len(c.Bench.Sizes) == 0 {
		return fmt.Errorf("bench.sizes must not be empty")
	}
	for _, n := range c.Bench.Sizes {
		if n <= 0 || n > c.Engine.MaxMissions {
			return fmt.Errorf("bench size %d must be between 1 and engine.max_missions (%d)", n, c.Engine.MaxMissions)
		}
	}
	if c.Bench.MinWaypoints <= 0 || c.Bench.MaxWaypoints < c.Bench.MinWaypoints {
		return fmt.Errorf("bench waypoint range must satisfy 0 < min_waypoints <= max_waypoints")
	}
	if c.Bench.Horizon <= 0 {
		return fmt.Errorf("bench.horizon must be positive")
	}
	if c.Bench.Extent <= 0 {
		return fmt.Errorf("bench.extent must be positive")
	}

	return nil
}

// String renders the configuration as YAML
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return string(data)
}

// EngineSettings builds the engine configuration, attaching a logger and an
// optional recorder
func (c *Config) EngineSettings(log logger.Logger, rec deconfliction.Recorder) deconfliction.Config {
	return deconfliction.Config{
		SafetyBuffer:     c.Engine.SafetyBuffer,
		MaxMissions:      c.Engine.MaxMissions,
		PruneMode:        deconfliction.PruneMode(c.Engine.PruneMode),
		GradedSeverity:   c.Engine.GradedSeverity,
		BatchConcurrency: c.Engine.BatchConcurrency,
		Logger:           log,
		Recorder:         rec,
	}
}

// LogFile returns the rotating log file settings, or false when file logging
// is disabled
func (c *Config) LogFile() (logger.FileConfig, bool) {
	if c.Logging.File == "" {
		return logger.FileConfig{}, false
	}
	return logger.FileConfig{
		Path:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
		Compress:   c.Logging.Compress,
	}, true
}

// DefaultDir returns the per-user configuration directory
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".deconflict"), nil
}

func contains(values []string, v string) bool {
	v = strings.ToLower(v)
	for _, valid := range values {
		if v == valid {
			return true
		}
	}
	return false
}
