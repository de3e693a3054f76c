// Package schema defines published survey structure: surveys, sections,
// fields, and the declarative rule specifications attached to them.
//
// # Overview
//
// A Survey is an immutable published snapshot identified by a version string.
// It contains ordered Sections, each containing ordered Fields. Sections and
// fields may carry a RuleSpec describing when they are visible; fields may
// additionally carry a RuleSpec describing when an answered value is valid.
//
// RuleSpec is deliberately loose: it mirrors what survey authors write in
// YAML or JSON. It is never evaluated directly. The compiler in
// pkg/logic/compiler turns each RuleSpec into a typed condition tree at
// publication time, rejecting unknown operands, operator/type mismatches,
// and forward references before the version can go live.
//
// # Versioning
//
// Published versions are immutable. Changing a survey means publishing a new
// version with a new identifier; consumers key every compiled artifact by
// that identifier.
package schema
