package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and then
// applies CANVASS_* environment variable overrides, which always win over
// file values. The result is re-validated.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("after environment overrides: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like LoadWithEnvOverrides, except that a missing
// configuration file falls back to defaults instead of failing. Any other
// read or parse error is still reported.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("after environment overrides: %w", err)
		}
		return cfg, nil
	}
	return LoadWithEnvOverrides(path)
}

// applyEnvOverrides applies CANVASS_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CANVASS_DEFINITIONS_DIR"); val != "" {
		cfg.Definitions.Dir = val
	}
	if val := os.Getenv("CANVASS_DEFINITIONS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Definitions.Watch = b
		}
	}
	if val := os.Getenv("CANVASS_DEFINITIONS_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Definitions.DebounceInterval = d
		}
	}

	if val := os.Getenv("CANVASS_SESSION_BACKEND"); val != "" {
		cfg.Session.Backend = val
	}
	if val := os.Getenv("CANVASS_SESSION_SQLITE_PATH"); val != "" {
		cfg.Session.SQLitePath = val
	}
	if val := os.Getenv("CANVASS_SESSION_INACTIVITY_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Session.InactivityWindow = d
		}
	}
	if val := os.Getenv("CANVASS_SESSION_SWEEP_SCHEDULE"); val != "" {
		cfg.Session.SweepSchedule = val
	}

	if val := os.Getenv("CANVASS_ARCHIVE_BACKEND"); val != "" {
		cfg.Archive.Backend = val
	}
	if val := os.Getenv("CANVASS_ARCHIVE_SQLITE_PATH"); val != "" {
		cfg.Archive.SQLitePath = val
	}

	if val := os.Getenv("CANVASS_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CANVASS_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CANVASS_LOG_REDACT_ANSWERS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Logging.RedactAnswers = b
		}
	}
	if val := os.Getenv("CANVASS_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CANVASS_METRICS_NAMESPACE"); val != "" {
		cfg.Telemetry.Metrics.Namespace = val
	}
}
