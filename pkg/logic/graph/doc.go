// Package graph builds the dependency graph of a compiled survey version
// and computes visible sets.
//
// # Overview
//
// Every section or field that owns a rule becomes a node; every operand
// field the rule references becomes an edge. The graph must be acyclic:
// Build runs a depth-first traversal and rejects the version with a
// CyclicDependencyError naming the participating identifiers if any back
// edge exists. Compilation already forbids forward references, which makes
// declaration order a valid evaluation order; the explicit cycle check
// keeps that invariant enforced at a single place instead of relying on
// recursion guards at evaluation time.
//
// # Visible sets
//
// VisibleSet walks sections and fields in declaration order and evaluates
// each visibility rule. A field is visible only when its section is
// visible and its own rule holds; a definition without a rule is always
// visible. The function is pure: identical snapshots always produce
// identical visible sets.
//
// A DependencyGraph is immutable once built and safe to share across all
// concurrent sessions of its survey version.
package graph
