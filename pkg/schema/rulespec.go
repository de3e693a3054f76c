package schema

// RuleAction determines what a satisfied rule means for its owner.
// The default action is "show": the owner is visible when the rule holds.
// "hide" inverts that, matching how authors sometimes phrase exclusions.
type RuleAction string

const (
	RuleActionShow RuleAction = "show"
	RuleActionHide RuleAction = "hide"
)

// RuleLogic combines the results of a rule's top-level conditions.
type RuleLogic string

const (
	RuleLogicAnd RuleLogic = "and"
	RuleLogicOr  RuleLogic = "or"
)

// RuleSpec is the declarative rule description attached to a section or
// field. It is what survey authors write; the compiler validates it and
// produces the evaluable tree. A nil or empty RuleSpec means "always".
type RuleSpec struct {
	// Conditions are combined according to Logic.
	Conditions []ConditionSpec `yaml:"conditions,omitempty" json:"conditions,omitempty"`

	// Logic is "and" (default) or "or".
	Logic RuleLogic `yaml:"logic,omitempty" json:"logic,omitempty"`

	// Action is "show" (default) or "hide".
	Action RuleAction `yaml:"action,omitempty" json:"action,omitempty"`
}

// ConditionSpec is a single declarative condition. Either the comparison
// form (Field/Operator/Value) or exactly one of the nesting forms (All,
// Any, Not) is populated, never both.
type ConditionSpec struct {
	Field    string `yaml:"field,omitempty" json:"field,omitempty"`
	Operator string `yaml:"operator,omitempty" json:"operator,omitempty"`
	Value    any    `yaml:"value,omitempty" json:"value,omitempty"`

	All []ConditionSpec `yaml:"all,omitempty" json:"all,omitempty"`
	Any []ConditionSpec `yaml:"any,omitempty" json:"any,omitempty"`
	Not *ConditionSpec  `yaml:"not,omitempty" json:"not,omitempty"`
}

// IsEmpty returns true if the spec has no conditions at all, meaning the
// owner is unconditionally visible (or valid).
func (r *RuleSpec) IsEmpty() bool {
	return r == nil || len(r.Conditions) == 0
}

// IsNested returns true if the condition uses one of the nesting forms.
func (c *ConditionSpec) IsNested() bool {
	return len(c.All) > 0 || len(c.Any) > 0 || c.Not != nil
}
