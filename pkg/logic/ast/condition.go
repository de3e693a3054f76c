package ast

// NodeType represents the kind of condition node in a compiled rule tree.
type NodeType string

const (
	NodeTypeComparison NodeType = "comparison" // field op literal
	NodeTypeAll        NodeType = "all"        // AND of children
	NodeTypeAny        NodeType = "any"        // OR of children
	NodeTypeNot        NodeType = "not"        // NOT of a single child
)

// Operator represents a comparison operator in a compiled condition.
type Operator string

const (
	OperatorEquals        Operator = "equals"
	OperatorNotEquals     Operator = "not_equals"
	OperatorGreaterThan   Operator = "greater_than"
	OperatorLessThan      Operator = "less_than"
	OperatorGreaterEquals Operator = "greater_than_or_equals"
	OperatorLessEquals    Operator = "less_than_or_equals"
	OperatorContains      Operator = "contains"
	OperatorNotContains   Operator = "not_contains"
	OperatorStartsWith    Operator = "starts_with"
	OperatorIsEmpty       Operator = "is_empty"
	OperatorIsNotEmpty    Operator = "is_not_empty"
	OperatorIn            Operator = "in"
	OperatorNotIn         Operator = "not_in"
)

// Operators lists every operator the compiler accepts, in stable order.
var Operators = []Operator{
	OperatorEquals,
	OperatorNotEquals,
	OperatorGreaterThan,
	OperatorLessThan,
	OperatorGreaterEquals,
	OperatorLessEquals,
	OperatorContains,
	OperatorNotContains,
	OperatorStartsWith,
	OperatorIsEmpty,
	OperatorIsNotEmpty,
	OperatorIn,
	OperatorNotIn,
}

// IsKnown returns true if op is one of the recognized operators.
func (op Operator) IsKnown() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// IsOrdering returns true for operators that require numeric or date operands.
func (op Operator) IsOrdering() bool {
	switch op {
	case OperatorGreaterThan, OperatorLessThan, OperatorGreaterEquals, OperatorLessEquals:
		return true
	}
	return false
}

// IsTextual returns true for operators defined over string operands.
func (op Operator) IsTextual() bool {
	switch op {
	case OperatorContains, OperatorNotContains, OperatorStartsWith:
		return true
	}
	return false
}

// IsPresence returns true for operators that test presence rather than value.
// Presence operators take no literal operand.
func (op Operator) IsPresence() bool {
	return op == OperatorIsEmpty || op == OperatorIsNotEmpty
}

// IsMembership returns true for operators that take a literal set operand.
func (op Operator) IsMembership() bool {
	return op == OperatorIn || op == OperatorNotIn
}

// ConditionNode represents one node of a compiled rule tree.
// Comparison nodes use Field, Operator, and Literal; All/Any/Not nodes use
// Children. Trees are immutable after compilation.
type ConditionNode struct {
	Type     NodeType
	Field    string          // operand field ID (Comparison only)
	Operator Operator        // comparison operator (Comparison only)
	Literal  any             // literal operand (Comparison only, nil for presence ops)
	Children []*ConditionNode // child conditions (All/Any/Not)
}

// IsComparison returns true if this is a field comparison node.
func (c *ConditionNode) IsComparison() bool {
	return c.Type == NodeTypeComparison
}

// IsLogical returns true if this is a boolean composition node.
func (c *ConditionNode) IsLogical() bool {
	return c.Type == NodeTypeAll || c.Type == NodeTypeAny || c.Type == NodeTypeNot
}

// Operands returns the IDs of every field referenced anywhere in the tree,
// in first-appearance order without duplicates.
func (c *ConditionNode) Operands() []string {
	var out []string
	seen := make(map[string]bool)
	c.walk(func(n *ConditionNode) {
		if n.Type == NodeTypeComparison && !seen[n.Field] {
			seen[n.Field] = true
			out = append(out, n.Field)
		}
	})
	return out
}

// walk visits every node in the tree depth-first.
func (c *ConditionNode) walk(visit func(*ConditionNode)) {
	if c == nil {
		return
	}
	visit(c)
	for _, child := range c.Children {
		child.walk(visit)
	}
}
