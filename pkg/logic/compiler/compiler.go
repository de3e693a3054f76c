package compiler

import (
	"time"

	"canvass-hq/canvass/pkg/logic/ast"
	"canvass-hq/canvass/pkg/schema"
)

// OwnerKind distinguishes what kind of definition owns a rule.
type OwnerKind string

const (
	OwnerSection OwnerKind = "section"
	OwnerField   OwnerKind = "field"
)

// OwnerRef identifies the section or field a rule belongs to, together with
// the exclusive upper bound of declaration indexes its operands may
// reference.
type OwnerRef struct {
	Kind OwnerKind
	ID   string

	// Bound is the first declaration index operands may NOT reference.
	// For a section visibility rule this is the index of the section's
	// first field; for a field visibility rule the field's own index; for
	// a field validation rule the field's index plus one, since validation
	// constraints compare a field against its own answer.
	Bound int
}

// CompiledRule is the output of compiling one RuleSpec: the evaluable
// condition tree plus the operand fields it references.
type CompiledRule struct {
	Owner    OwnerRef
	Expr     *ast.ConditionNode
	Operands []string
}

// Compile turns a declarative rule spec into a compiled rule. A nil or
// empty spec compiles to a nil rule, meaning "always". On failure it
// returns an *ErrorList carrying every problem found in the spec.
func Compile(spec *schema.RuleSpec, owner OwnerRef, scope *Scope) (*CompiledRule, error) {
	if spec.IsEmpty() {
		return nil, nil
	}

	errs := NewErrorList()

	children := make([]*ast.ConditionNode, 0, len(spec.Conditions))
	for _, cond := range spec.Conditions {
		if node := compileCondition(cond, owner, scope, errs); node != nil {
			children = append(children, node)
		}
	}

	if errs.HasErrors() {
		return nil, errs
	}

	expr := combine(children, spec.Logic)
	if spec.Action == schema.RuleActionHide {
		expr = &ast.ConditionNode{
			Type:     ast.NodeTypeNot,
			Children: []*ast.ConditionNode{expr},
		}
	}

	return &CompiledRule{
		Owner:    owner,
		Expr:     expr,
		Operands: expr.Operands(),
	}, nil
}

// combine joins top-level conditions under the spec's logic connective.
// A single condition is used directly without a wrapper node.
func combine(children []*ast.ConditionNode, logic schema.RuleLogic) *ast.ConditionNode {
	if len(children) == 1 {
		return children[0]
	}
	typ := ast.NodeTypeAll
	if logic == schema.RuleLogicOr {
		typ = ast.NodeTypeAny
	}
	return &ast.ConditionNode{Type: typ, Children: children}
}

// compileCondition compiles a single declarative condition, recursing into
// nesting forms. It returns nil when the condition has errors; the errors
// are recorded in errs.
func compileCondition(c schema.ConditionSpec, owner OwnerRef, scope *Scope, errs *ErrorList) *ast.ConditionNode {
	if c.IsNested() {
		if c.Field != "" || c.Operator != "" {
			errs.AddError(KindTypeMismatch, owner.ID, c.Field,
				"condition mixes a comparison with a nested group")
			return nil
		}
		return compileNested(c, owner, scope, errs)
	}

	op := ast.Operator(c.Operator)
	if !op.IsKnown() {
		errs.AddError(KindTypeMismatch, owner.ID, c.Field,
			"unknown operator %q", c.Operator)
		return nil
	}

	fieldType, index, ok := scope.Lookup(c.Field)
	if !ok {
		errs.AddError(KindUnknownOperand, owner.ID, c.Field,
			"field does not exist in this survey version")
		return nil
	}

	if index >= owner.Bound {
		errs.AddError(KindForwardReference, owner.ID, c.Field,
			"field is declared at or after the rule's owner in evaluation order")
		return nil
	}

	if !checkCompat(op, fieldType, c.Value, owner, c.Field, errs) {
		return nil
	}

	return &ast.ConditionNode{
		Type:     ast.NodeTypeComparison,
		Field:    c.Field,
		Operator: op,
		Literal:  c.Value,
	}
}

// compileNested compiles an all/any/not group.
func compileNested(c schema.ConditionSpec, owner OwnerRef, scope *Scope, errs *ErrorList) *ast.ConditionNode {
	switch {
	case c.Not != nil:
		if len(c.All) > 0 || len(c.Any) > 0 {
			errs.AddError(KindTypeMismatch, owner.ID, "",
				"condition mixes not with all/any groups")
			return nil
		}
		child := compileCondition(*c.Not, owner, scope, errs)
		if child == nil {
			return nil
		}
		return &ast.ConditionNode{Type: ast.NodeTypeNot, Children: []*ast.ConditionNode{child}}

	case len(c.All) > 0 && len(c.Any) > 0:
		errs.AddError(KindTypeMismatch, owner.ID, "",
			"condition mixes all and any groups")
		return nil

	case len(c.All) > 0:
		return compileGroup(c.All, ast.NodeTypeAll, owner, scope, errs)

	default:
		return compileGroup(c.Any, ast.NodeTypeAny, owner, scope, errs)
	}
}

// compileGroup compiles the children of an all/any group.
func compileGroup(specs []schema.ConditionSpec, typ ast.NodeType, owner OwnerRef, scope *Scope, errs *ErrorList) *ast.ConditionNode {
	children := make([]*ast.ConditionNode, 0, len(specs))
	for _, spec := range specs {
		if node := compileCondition(spec, owner, scope, errs); node != nil {
			children = append(children, node)
		}
	}
	if errs.HasErrors() {
		return nil
	}
	return &ast.ConditionNode{Type: typ, Children: children}
}

// checkCompat verifies operator/operand-type/literal compatibility. It
// records a TypeMismatch error and returns false on any violation.
func checkCompat(op ast.Operator, fieldType schema.FieldType, literal any, owner OwnerRef, operand string, errs *ErrorList) bool {
	switch {
	case op.IsPresence():
		if literal != nil {
			errs.AddError(KindTypeMismatch, owner.ID, operand,
				"operator %q takes no literal value", op)
			return false
		}
		return true

	case op.IsOrdering():
		if fieldType != schema.FieldTypeNumber && fieldType != schema.FieldTypeDate {
			errs.AddError(KindTypeMismatch, owner.ID, operand,
				"operator %q requires a number or date field, got %s", op, fieldType)
			return false
		}
		if fieldType == schema.FieldTypeNumber && !isNumericLiteral(literal) {
			errs.AddError(KindTypeMismatch, owner.ID, operand,
				"operator %q on a number field requires a numeric literal", op)
			return false
		}
		if fieldType == schema.FieldTypeDate && !isDateLiteral(literal) {
			errs.AddError(KindTypeMismatch, owner.ID, operand,
				"operator %q on a date field requires a date literal", op)
			return false
		}
		return true

	case op.IsTextual():
		ok := fieldType == schema.FieldTypeShortText ||
			fieldType == schema.FieldTypeLongText ||
			fieldType == schema.FieldTypeSingleChoice
		// contains also works on multi-choice answers as element membership.
		if (op == ast.OperatorContains || op == ast.OperatorNotContains) &&
			fieldType == schema.FieldTypeMultiChoice {
			ok = true
		}
		if !ok {
			errs.AddError(KindTypeMismatch, owner.ID, operand,
				"operator %q is not valid for a %s field", op, fieldType)
			return false
		}
		if _, isString := literal.(string); !isString {
			errs.AddError(KindTypeMismatch, owner.ID, operand,
				"operator %q requires a string literal", op)
			return false
		}
		return true

	case op.IsMembership():
		set, isList := literal.([]any)
		if !isList {
			errs.AddError(KindTypeMismatch, owner.ID, operand,
				"operator %q requires a list literal", op)
			return false
		}
		for _, elem := range set {
			if !isScalarLiteral(elem) {
				errs.AddError(KindTypeMismatch, owner.ID, operand,
					"operator %q requires scalar list elements", op)
				return false
			}
		}
		return true

	default:
		// equals / not_equals accept any declared type but only scalar
		// literals; list equality is undefined.
		if !isScalarLiteral(literal) {
			errs.AddError(KindTypeMismatch, owner.ID, operand,
				"operator %q requires a scalar literal", op)
			return false
		}
		return true
	}
}

// isScalarLiteral reports whether a literal is a single comparable value.
// A nil literal is scalar; an absent value compiles like an explicit null.
func isScalarLiteral(v any) bool {
	switch v.(type) {
	case nil, string, bool, int, int64, float64, float32:
		return true
	}
	return false
}

// isNumericLiteral reports whether a literal can serve as a numeric operand.
// YAML and JSON decoders produce int and float64 for numbers.
func isNumericLiteral(v any) bool {
	switch v.(type) {
	case int, int64, float64, float32:
		return true
	}
	return false
}

// dateLayouts are the literal formats accepted for date comparisons.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// isDateLiteral reports whether a literal parses as a date.
func isDateLiteral(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
