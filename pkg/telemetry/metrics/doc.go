// Package metrics exposes Prometheus instrumentation for the engine.
//
// All metrics register against an injectable *prometheus.Registry, so the
// embedding application controls exposition. The engine never starts an
// HTTP listener of its own; serving /metrics belongs to the excluded API
// layer.
package metrics
