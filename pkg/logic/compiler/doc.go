// Package compiler turns declarative rule specifications into compiled
// condition trees.
//
// # Overview
//
// Compilation happens exactly once, when a survey version is published. The
// compiler checks every condition against the survey's field scope:
//
//   - the operand field must exist (UnknownOperand)
//   - the operator must be compatible with the operand's declared type
//     (TypeMismatch, e.g. contains on a number field)
//   - the operand must be declared before the rule's owner in evaluation
//     order (ForwardReference)
//
// Errors accumulate: a single Compile call reports every problem in the
// rule, not just the first, so authors can fix a survey in one pass.
//
// # Evaluation order
//
// Fields are numbered in declaration order, sections sequential and fields
// within a section sequential. A section visibility rule may reference only
// fields in earlier sections. A field visibility rule may reference only
// earlier fields. A field validation rule may additionally reference the
// field itself, since constraints like minimum values compare a field
// against its own answer.
package compiler
