package config

import "time"

// Config is the root configuration for the canvass engine and its
// tooling.
type Config struct {
	// Definitions configures where published survey definitions come from.
	Definitions DefinitionsConfig `yaml:"definitions"`

	// Session configures draft storage and expiry.
	Session SessionConfig `yaml:"session"`

	// Archive configures finalized-response storage.
	Archive ArchiveConfig `yaml:"archive"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DefinitionsConfig configures the survey definition source.
type DefinitionsConfig struct {
	// Dir is the directory holding YAML survey definition files.
	// Default: "./surveys".
	Dir string `yaml:"dir"`

	// Watch enables reloading the directory when files change, so new
	// versions publish without a restart.
	// Default: false.
	Watch bool `yaml:"watch"`

	// DebounceInterval is how long the watcher waits after the last file
	// event before reloading.
	// Default: 250ms.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// SessionConfig configures draft session storage and expiry.
type SessionConfig struct {
	// Backend selects the draft store: "memory" or "sqlite".
	// Default: "memory".
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/drafts.db".
	SQLitePath string `yaml:"sqlite_path"`

	// InactivityWindow is how long a draft survives without a heartbeat.
	// Default: 30m.
	InactivityWindow time.Duration `yaml:"inactivity_window"`

	// SweepSchedule is the cron expression driving expiry sweeping.
	// Empty disables scheduled sweeping.
	// Default: "*/5 * * * *".
	SweepSchedule string `yaml:"sweep_schedule"`
}

// ArchiveConfig configures finalized-response and audit storage.
type ArchiveConfig struct {
	// Backend selects the archive sink: "memory" or "sqlite".
	// Default: "sqlite".
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/archive.db".
	SQLitePath string `yaml:"sqlite_path"`
}

// TelemetryConfig configures observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info".
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json".
	Format string `yaml:"format"`

	// RedactAnswers masks answer values and respondent identifiers in
	// log output. Default: false.
	RedactAnswers bool `yaml:"redact_answers"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	// Default: true.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "canvass".
	Namespace string `yaml:"namespace"`
}
