// Package telemetry groups the observability building blocks.
//
// Subpackages:
//
//   - logging: structured slog construction with answer redaction
//   - metrics: Prometheus instrumentation for the engine
//
// Both are optional collaborators. The engine and the session layer
// accept a logger and a metrics handle; passing nil (or omitting them)
// degrades to slog.Default and no instrumentation.
package telemetry
