package config

import "time"

// Default values for configuration fields.
const (
	DefaultDefinitionsDir   = "./surveys"
	DefaultWatch            = false
	DefaultDebounceInterval = 250 * time.Millisecond

	DefaultSessionBackend   = "memory"
	DefaultSessionSQLite    = "data/drafts.db"
	DefaultInactivityWindow = 30 * time.Minute
	DefaultSweepSchedule    = "*/5 * * * *"

	DefaultArchiveBackend = "sqlite"
	DefaultArchiveSQLite  = "data/archive.db"

	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "canvass"
)

// DefaultConfig returns a configuration with every field set to its
// default.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Definitions.Dir == "" {
		cfg.Definitions.Dir = DefaultDefinitionsDir
	}
	if cfg.Definitions.DebounceInterval <= 0 {
		cfg.Definitions.DebounceInterval = DefaultDebounceInterval
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = DefaultSessionBackend
	}
	if cfg.Session.SQLitePath == "" {
		cfg.Session.SQLitePath = DefaultSessionSQLite
	}
	if cfg.Session.InactivityWindow <= 0 {
		cfg.Session.InactivityWindow = DefaultInactivityWindow
	}
	if cfg.Session.SweepSchedule == "" {
		cfg.Session.SweepSchedule = DefaultSweepSchedule
	}

	if cfg.Archive.Backend == "" {
		cfg.Archive.Backend = DefaultArchiveBackend
	}
	if cfg.Archive.SQLitePath == "" {
		cfg.Archive.SQLitePath = DefaultArchiveSQLite
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
