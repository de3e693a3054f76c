// Package provider publishes survey definitions to the engine.
//
// The Registry is a thread-safe in-memory store of published survey
// versions. Publishing compiles the version's rules first, so a version
// with compile errors is never visible to respondents. Published versions
// are immutable; a version identifier can be published exactly once.
//
// The Loader fills a registry from a directory of YAML survey files, and
// the Watcher re-runs the loader when files change, with debouncing so an
// editor save storm triggers a single reload.
package provider
