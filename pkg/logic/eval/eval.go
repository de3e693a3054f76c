package eval

import (
	"canvass-hq/canvass/pkg/logic/ast"
)

// Snapshot is a partial or complete answer set keyed by field ID.
// Values carry the types the answer decoder produced: string, bool,
// numeric types, or []any for multi-choice answers.
type Snapshot map[string]any

// Evaluate evaluates a compiled condition tree against a snapshot.
// A nil tree always evaluates to true.
func Evaluate(node *ast.ConditionNode, answers Snapshot) bool {
	if node == nil {
		return true
	}

	switch node.Type {
	case ast.NodeTypeComparison:
		return evaluateComparison(node, answers)

	case ast.NodeTypeAll:
		for _, child := range node.Children {
			if !Evaluate(child, answers) {
				return false
			}
		}
		return true

	case ast.NodeTypeAny:
		for _, child := range node.Children {
			if Evaluate(child, answers) {
				return true
			}
		}
		return false

	case ast.NodeTypeNot:
		if len(node.Children) != 1 {
			return false
		}
		return !Evaluate(node.Children[0], answers)

	default:
		return false
	}
}

// evaluateComparison applies one operator with closed-world semantics for
// missing operands.
func evaluateComparison(node *ast.ConditionNode, answers Snapshot) bool {
	actual, present := answers[node.Field]

	switch node.Operator {
	case ast.OperatorIsEmpty:
		return !present || IsEmpty(actual)
	case ast.OperatorIsNotEmpty:
		return present && !IsEmpty(actual)
	}

	// Closed-world policy: a missing or nil operand satisfies no
	// comparison.
	if !present || actual == nil {
		return false
	}

	return applyOperator(node.Operator, actual, node.Literal)
}

// IsEmpty reports whether an answered value counts as empty:
// nil, the empty string, or an empty list.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	}
	return false
}
