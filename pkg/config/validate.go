package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError is a validation error on one configuration field.
type FieldError struct {
	// Field is the dotted path to the field, e.g. "session.backend".
	Field string

	// Message is a human-readable description of the problem.
	Message string
}

// Error implements the error interface.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every validation failure in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Validate checks the configuration, collecting every failure.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Definitions.Dir == "" {
		errs = append(errs, FieldError{"definitions.dir", "cannot be empty"})
	}
	if cfg.Definitions.DebounceInterval <= 0 {
		errs = append(errs, FieldError{"definitions.debounce_interval", "must be positive"})
	}

	switch cfg.Session.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{"session.backend",
			fmt.Sprintf("unknown backend %q, expected memory or sqlite", cfg.Session.Backend)})
	}
	if cfg.Session.Backend == "sqlite" && cfg.Session.SQLitePath == "" {
		errs = append(errs, FieldError{"session.sqlite_path", "required for the sqlite backend"})
	}
	if cfg.Session.InactivityWindow <= 0 {
		errs = append(errs, FieldError{"session.inactivity_window", "must be positive"})
	}
	if cfg.Session.SweepSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Session.SweepSchedule); err != nil {
			errs = append(errs, FieldError{"session.sweep_schedule",
				fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}

	switch cfg.Archive.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{"archive.backend",
			fmt.Sprintf("unknown backend %q, expected memory or sqlite", cfg.Archive.Backend)})
	}
	if cfg.Archive.Backend == "sqlite" && cfg.Archive.SQLitePath == "" {
		errs = append(errs, FieldError{"archive.sqlite_path", "required for the sqlite backend"})
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("unknown level %q", cfg.Telemetry.Logging.Level)})
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("unknown format %q", cfg.Telemetry.Logging.Format)})
	}
	if cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.Namespace == "" {
		errs = append(errs, FieldError{"telemetry.metrics.namespace", "cannot be empty"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
