package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
)

func TestDefaultConfig(t *testing.T) {
	config := GetDefaultConfig()

	if err := config.Validate(); err != nil {
		t.Fatalf("Default config validation failed: %v", err)
	}

	if config.Engine.SafetyBuffer != 10 {
		t.Errorf("Expected default safety buffer 10, got %f", config.Engine.SafetyBuffer)
	}

	if config.Engine.MaxMissions != 1000 {
		t.Errorf("Expected default max missions 1000, got %d", config.Engine.MaxMissions)
	}

	if len(config.Bench.Sizes) != 5 || config.Bench.Sizes[4] != 1000 {
		t.Errorf("Unexpected default bench sizes %v", config.Bench.Sizes)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative buffer", func(c *Config) { c.Engine.SafetyBuffer = -1 }, "safety_buffer"},
		{"zero capacity", func(c *Config) { c.Engine.MaxMissions = 0 }, "max_missions"},
		{"bad prune mode", func(c *Config) { c.Engine.PruneMode = "grid" }, "prune_mode"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bench above capacity", func(c *Config) { c.Bench.Sizes = []int{2000} }, "bench size"},
		{"waypoint range", func(c *Config) { c.Bench.MinWaypoints = 5; c.Bench.MaxWaypoints = 4 }, "waypoint range"},
		{"zero horizon", func(c *Config) { c.Bench.Horizon = 0 }, "horizon"},
		{"zero buffer is allowed", func(c *Config) { c.Engine.SafetyBuffer = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfigKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deconflict.yaml")
	data := `engine:
  safety_buffer: 25
  prune_mode: boundary
bench:
  sizes: [10, 20]
  horizon: 30m
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Engine.SafetyBuffer != 25 {
		t.Errorf("Expected safety buffer 25, got %f", config.Engine.SafetyBuffer)
	}
	if config.Engine.PruneMode != "boundary" {
		t.Errorf("Expected prune mode 'boundary', got '%s'", config.Engine.PruneMode)
	}
	if config.Engine.MaxMissions != 1000 {
		t.Errorf("Expected default max missions to survive, got %d", config.Engine.MaxMissions)
	}
	if config.Bench.Horizon != 30*time.Minute {
		t.Errorf("Expected horizon 30m, got %v", config.Bench.Horizon)
	}
	if config.Logging.Level != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  max_missions: -4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := GetDefaultConfig()
	config.Engine.GradedSeverity = true
	config.Store.Path = "missions.db"

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if !loaded.Engine.GradedSeverity || loaded.Store.Path != "missions.db" {
		t.Errorf("Round trip lost values: %+v", loaded)
	}
	if loaded.Store.BusyTimeout != 5*time.Second {
		t.Errorf("Expected busy timeout 5s, got %v", loaded.Store.BusyTimeout)
	}
}

func TestMergeWithEnvironment(t *testing.T) {
	t.Setenv("DECONFLICT_SAFETY_BUFFER", "12.5")
	t.Setenv("DECONFLICT_MAX_MISSIONS", "not-a-number")
	t.Setenv("DECONFLICT_PRUNE_MODE", "Boundary")
	t.Setenv("DECONFLICT_LOG_LEVEL", "debug")
	t.Setenv("DECONFLICT_DB", "/tmp/missions.db")
	t.Setenv("DECONFLICT_BUSY_TIMEOUT", "250ms")

	config := GetDefaultConfig()
	MergeWithEnvironment(config)

	if config.Engine.SafetyBuffer != 12.5 {
		t.Errorf("Expected safety buffer 12.5, got %f", config.Engine.SafetyBuffer)
	}
	if config.Engine.MaxMissions != 1000 {
		t.Errorf("Expected invalid max missions to be ignored, got %d", config.Engine.MaxMissions)
	}
	if config.Engine.PruneMode != "boundary" {
		t.Errorf("Expected prune mode 'boundary', got '%s'", config.Engine.PruneMode)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", config.Logging.Level)
	}
	if config.Store.Path != "/tmp/missions.db" || config.Store.BusyTimeout != 250*time.Millisecond {
		t.Errorf("Unexpected store config %+v", config.Store)
	}
}

func TestMergeWithCLIOverrides(t *testing.T) {
	config := GetDefaultConfig()
	MergeWithCLIOverrides(config, map[string]interface{}{
		"safety_buffer": 5.0,
		"max_missions":  "many",
		"log_level":     "WARN",
		"bench_sizes":   []int{10, 20},
		"db":            "cli.db",
	})

	if config.Engine.SafetyBuffer != 5 {
		t.Errorf("Expected safety buffer 5, got %f", config.Engine.SafetyBuffer)
	}
	if config.Engine.MaxMissions != 1000 {
		t.Errorf("Expected mistyped override to be ignored, got %d", config.Engine.MaxMissions)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level 'warn', got '%s'", config.Logging.Level)
	}
	if len(config.Bench.Sizes) != 2 || config.Store.Path != "cli.db" {
		t.Errorf("Unexpected overrides %+v %+v", config.Bench, config.Store)
	}
}

func TestLoadConfigWithOverridesRejectsInvalidResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := SaveConfig(GetDefaultConfig(), path); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfigWithOverrides(path, map[string]interface{}{
		"max_missions": 5,
	})
	if err == nil || !strings.Contains(err.Error(), "after overrides") {
		t.Errorf("Expected bench sizes above capacity to fail validation, got %v", err)
	}
}

func TestEngineSettings(t *testing.T) {
	config := GetDefaultConfig()
	config.Engine.PruneMode = "boundary"

	settings := config.EngineSettings(nil, nil)
	if settings.PruneMode != deconfliction.PruneBoundary || settings.SafetyBuffer != 10 {
		t.Errorf("Unexpected engine settings %+v", settings)
	}
	if _, err := deconfliction.NewEngine(settings); err != nil {
		t.Errorf("Expected settings to build an engine, got %v", err)
	}

	if _, ok := config.LogFile(); ok {
		t.Errorf("Expected file logging disabled by default")
	}
	config.Logging.File = "deconflict.log"
	if fc, ok := config.LogFile(); !ok || fc.MaxBackups != 3 {
		t.Errorf("Unexpected file config %+v", fc)
	}
}
