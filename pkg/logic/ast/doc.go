// Package ast defines the compiled representation of conditional visibility
// and validation rules.
//
// # Overview
//
// Survey authors describe rules declaratively (see pkg/schema.RuleSpec). The
// compiler in pkg/logic/compiler turns those descriptions into a tree of
// ConditionNode values, the tagged variant defined here. The tree is the only
// form the evaluator ever sees: once a survey version is published its rules
// exist solely as ConditionNode trees, validated for operand existence and
// operator/type compatibility.
//
// # Structure
//
// A tree is built from four node kinds:
//
//   - Comparison: field operator literal (e.g. age greater_than 65)
//   - All: logical AND of children
//   - Any: logical OR of children
//   - Not: negation of a single child
//
// Nodes are immutable after compilation and safe for concurrent evaluation.
package ast
