// Package eval evaluates compiled condition trees against answer snapshots.
//
// # Overview
//
// Evaluation is total: it always produces a boolean, never an error. The
// closed-world policy governs missing operands. If a condition's operand
// field is absent from the snapshot, every comparison evaluates to false
// (the rule is not satisfied), while is_empty evaluates to true. An
// unanswered upstream field can therefore never reveal a downstream field
// that depends on a positive comparison, but it can satisfy an explicit
// emptiness check.
//
// Malformed values encountered at evaluation time (for example a literal
// that no longer parses as a number) also fall back to the closed-world
// false rather than raising, keeping evaluation total over all snapshots.
//
// Evaluation has no side effects, so And/Or short-circuit ordering affects
// only cost, never results.
package eval
