package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/uav-deconfliction/pkg/logger"
)

// LoadConfig loads configuration from a YAML file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SearchPaths returns the locations tried when no config path is given
func SearchPaths() []string {
	paths := []string{
		"deconflict.yaml",
		"config.yaml",
	}
	if dir, err := DefaultDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.yaml"))
	}
	return paths
}

// LoadConfigOrDefault loads config from file or returns default, with
// environment overrides applied
func LoadConfigOrDefault(path string) (*Config, error) {
	var config *Config
	var err error

	if path != "" {
		config, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if config == nil {
		for _, p := range SearchPaths() {
			if _, statErr := os.Stat(p); statErr != nil {
				continue
			}
			config, err = LoadConfig(p)
			if err != nil {
				logger.Warnf("Could not load config from %s: %v", p, err)
				config = nil
				continue
			}
			logger.Debugf("Loaded config from: %s", p)
			break
		}
	}

	if config == nil {
		logger.Debug("Using default configuration")
		config = GetDefaultConfig()
	}

	MergeWithEnvironment(config)

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// MergeWithCLIOverrides applies CLI parameter overrides to the configuration.
// Values of the wrong type or out of range are ignored.
func MergeWithCLIOverrides(config *Config, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "safety_buffer":
			if buffer, ok := value.(float64); ok && buffer >= 0 {
				config.Engine.SafetyBuffer = buffer
			}
		case "max_missions":
			if count, ok := value.(int); ok && count > 0 {
				config.Engine.MaxMissions = count
			}
		case "prune_mode":
			if mode, ok := value.(string); ok && contains(validPruneModes, mode) {
				config.Engine.PruneMode = strings.ToLower(mode)
			}
		case "graded_severity":
			if graded, ok := value.(bool); ok {
				config.Engine.GradedSeverity = graded
			}
		case "log_level":
			if level, ok := value.(string); ok && contains(validLevels, level) {
				config.Logging.Level = strings.ToLower(level)
			}
		case "no_color":
			if noColor, ok := value.(bool); ok {
				config.Logging.NoColor = noColor
			}
		case "log_file":
			if path, ok := value.(string); ok && path != "" {
				config.Logging.File = path
			}
		case "db":
			if path, ok := value.(string); ok && path != "" {
				config.Store.Path = path
			}
		case "bench_sizes":
			if sizes, ok := value.([]int); ok && len(sizes) > 0 {
				config.Bench.Sizes = sizes
			}
		case "seed":
			if seed, ok := value.(int64); ok {
				config.Bench.Seed = seed
			}
		}
	}
}

// LoadConfigWithOverrides loads config and applies both environment and CLI overrides
func LoadConfigWithOverrides(path string, cliOverrides map[string]interface{}) (*Config, error) {
	config, err := LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}

	if cliOverrides != nil {
		MergeWithCLIOverrides(config, cliOverrides)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after overrides: %w", err)
	}

	return config, nil
}

// MergeWithEnvironment merges config with DECONFLICT_* environment variables
func MergeWithEnvironment(config *Config) {
	if v := os.Getenv("DECONFLICT_SAFETY_BUFFER"); v != "" {
		if buffer, err := strconv.ParseFloat(v, 64); err == nil && buffer >= 0 {
			config.Engine.SafetyBuffer = buffer
		}
	}

	if v := os.Getenv("DECONFLICT_MAX_MISSIONS"); v != "" {
		if count, err := strconv.Atoi(v); err == nil && count > 0 {
			config.Engine.MaxMissions = count
		}
	}

	if v := os.Getenv("DECONFLICT_PRUNE_MODE"); v != "" && contains(validPruneModes, v) {
		config.Engine.PruneMode = strings.ToLower(v)
	}

	if v := os.Getenv("DECONFLICT_GRADED_SEVERITY"); v != "" {
		if graded, err := strconv.ParseBool(v); err == nil {
			config.Engine.GradedSeverity = graded
		}
	}

	if v := os.Getenv("DECONFLICT_LOG_LEVEL"); v != "" && contains(validLevels, v) {
		config.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv("DECONFLICT_LOG_FILE"); v != "" {
		config.Logging.File = v
	}

	if v := os.Getenv("NO_COLOR"); v != "" {
		config.Logging.NoColor = true
	}

	if v := os.Getenv("DECONFLICT_DB"); v != "" {
		config.Store.Path = v
	}

	if v := os.Getenv("DECONFLICT_BUSY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			config.Store.BusyTimeout = d
		}
	}

	if v := os.Getenv("DECONFLICT_SCENARIO_DIRS"); v != "" {
		config.Scenarios.Dirs = filepath.SplitList(v)
	}

	if v := os.Getenv("DECONFLICT_BENCH_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Bench.Seed = seed
		}
	}
}
