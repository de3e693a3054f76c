package compiler

import (
	"errors"
	"testing"

	"canvass-hq/canvass/pkg/logic/ast"
	"canvass-hq/canvass/pkg/schema"
)

// testSurvey builds a small two-section survey used throughout the
// compiler tests: demographics (age, country, employment) followed by a
// gated follow-up section.
func testSurvey() *schema.Survey {
	return &schema.Survey{
		ID:      "customer-study",
		Version: "v3",
		Title:   "Customer Study",
		Sections: []*schema.Section{
			{
				ID:    "demographics",
				Title: "About You",
				Fields: []*schema.Field{
					{ID: "age", Type: schema.FieldTypeNumber, Label: "Age", Required: true},
					{ID: "country", Type: schema.FieldTypeSingleChoice, Label: "Country", Options: []schema.Option{
						{Value: "FR", Label: "France"},
						{Value: "DE", Label: "Germany"},
					}},
					{ID: "employment", Type: schema.FieldTypeSingleChoice, Label: "Employment", Options: []schema.Option{
						{Value: "employed", Label: "Employed"},
						{Value: "student", Label: "Student"},
					}},
				},
			},
			{
				ID:    "work",
				Title: "Your Work",
				VisibleWhen: &schema.RuleSpec{
					Conditions: []schema.ConditionSpec{
						{Field: "employment", Operator: "equals", Value: "employed"},
					},
				},
				Fields: []*schema.Field{
					{ID: "job_title", Type: schema.FieldTypeShortText, Label: "Job Title"},
					{ID: "start_date", Type: schema.FieldTypeDate, Label: "Start Date"},
				},
			},
		},
	}
}

func TestCompile_EmptySpecMeansAlways(t *testing.T) {
	scope := NewScope(testSurvey())
	owner := OwnerRef{Kind: OwnerField, ID: "country", Bound: 1}

	rule, err := Compile(nil, owner, scope)
	if err != nil {
		t.Fatalf("Compile(nil) failed: %v", err)
	}
	if rule != nil {
		t.Errorf("Expected nil rule for nil spec, got %+v", rule)
	}

	rule, err = Compile(&schema.RuleSpec{}, owner, scope)
	if err != nil {
		t.Fatalf("Compile(empty) failed: %v", err)
	}
	if rule != nil {
		t.Errorf("Expected nil rule for empty spec, got %+v", rule)
	}
}

func TestCompile_SingleCondition(t *testing.T) {
	scope := NewScope(testSurvey())
	spec := &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "age", Operator: "greater_than", Value: 18},
		},
	}

	rule, err := Compile(spec, OwnerRef{Kind: OwnerField, ID: "country", Bound: 1}, scope)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// A single condition compiles without a wrapper node.
	if rule.Expr.Type != ast.NodeTypeComparison {
		t.Errorf("Expected comparison root, got %q", rule.Expr.Type)
	}
	if rule.Expr.Field != "age" || rule.Expr.Operator != ast.OperatorGreaterThan {
		t.Errorf("Unexpected compiled comparison: %+v", rule.Expr)
	}
	if len(rule.Operands) != 1 || rule.Operands[0] != "age" {
		t.Errorf("Operands = %v, want [age]", rule.Operands)
	}
}

func TestCompile_AndOrLogic(t *testing.T) {
	scope := NewScope(testSurvey())
	owner := OwnerRef{Kind: OwnerField, ID: "employment", Bound: 2}

	conditions := []schema.ConditionSpec{
		{Field: "age", Operator: "greater_than_or_equals", Value: 18},
		{Field: "country", Operator: "in", Value: []any{"FR", "DE"}},
	}

	andRule, err := Compile(&schema.RuleSpec{Conditions: conditions}, owner, scope)
	if err != nil {
		t.Fatalf("Compile(and) failed: %v", err)
	}
	if andRule.Expr.Type != ast.NodeTypeAll {
		t.Errorf("Expected all root for default logic, got %q", andRule.Expr.Type)
	}

	orRule, err := Compile(&schema.RuleSpec{Conditions: conditions, Logic: schema.RuleLogicOr}, owner, scope)
	if err != nil {
		t.Fatalf("Compile(or) failed: %v", err)
	}
	if orRule.Expr.Type != ast.NodeTypeAny {
		t.Errorf("Expected any root for or logic, got %q", orRule.Expr.Type)
	}
}

func TestCompile_HideActionNegates(t *testing.T) {
	scope := NewScope(testSurvey())
	spec := &schema.RuleSpec{
		Action: schema.RuleActionHide,
		Conditions: []schema.ConditionSpec{
			{Field: "age", Operator: "less_than", Value: 18},
		},
	}

	rule, err := Compile(spec, OwnerRef{Kind: OwnerField, ID: "country", Bound: 1}, scope)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if rule.Expr.Type != ast.NodeTypeNot {
		t.Fatalf("Expected not root for hide action, got %q", rule.Expr.Type)
	}
	if rule.Expr.Children[0].Type != ast.NodeTypeComparison {
		t.Errorf("Expected comparison under the not node, got %q", rule.Expr.Children[0].Type)
	}
}

func TestCompile_NestedGroups(t *testing.T) {
	scope := NewScope(testSurvey())
	spec := &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{
				Any: []schema.ConditionSpec{
					{Field: "country", Operator: "equals", Value: "FR"},
					{Not: &schema.ConditionSpec{Field: "age", Operator: "less_than", Value: 65}},
				},
			},
		},
	}

	rule, err := Compile(spec, OwnerRef{Kind: OwnerField, ID: "employment", Bound: 2}, scope)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if rule.Expr.Type != ast.NodeTypeAny {
		t.Fatalf("Expected any root, got %q", rule.Expr.Type)
	}
	if len(rule.Expr.Children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(rule.Expr.Children))
	}
	if rule.Expr.Children[1].Type != ast.NodeTypeNot {
		t.Errorf("Expected second child to be a not node, got %q", rule.Expr.Children[1].Type)
	}
}

func TestCompile_UnknownOperand(t *testing.T) {
	scope := NewScope(testSurvey())
	spec := &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "household_income", Operator: "greater_than", Value: 50000},
		},
	}

	_, err := Compile(spec, OwnerRef{Kind: OwnerField, ID: "country", Bound: 1}, scope)
	if err == nil {
		t.Fatal("Expected compile error for unknown operand")
	}

	var list *ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("Expected *ErrorList, got %T", err)
	}
	if !list.HasKind(KindUnknownOperand) {
		t.Errorf("Expected an unknown_operand error, got: %v", list)
	}
}

func TestCompile_ForwardReference(t *testing.T) {
	scope := NewScope(testSurvey())

	// country is declared at index 1; a rule on age (index 0) may not
	// reference it.
	spec := &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "country", Operator: "equals", Value: "FR"},
		},
	}

	_, err := Compile(spec, OwnerRef{Kind: OwnerField, ID: "age", Bound: 0}, scope)
	if err == nil {
		t.Fatal("Expected compile error for forward reference")
	}

	var list *ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("Expected *ErrorList, got %T", err)
	}
	if !list.HasKind(KindForwardReference) {
		t.Errorf("Expected a forward_reference error, got: %v", list)
	}
}

func TestCompile_SelfReferenceIsForward(t *testing.T) {
	scope := NewScope(testSurvey())

	// A visibility rule referencing its own field is a forward reference.
	spec := &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "age", Operator: "greater_than", Value: 18},
		},
	}

	_, err := Compile(spec, OwnerRef{Kind: OwnerField, ID: "age", Bound: 0}, scope)
	if err == nil {
		t.Fatal("Expected compile error for self reference in a visibility rule")
	}
}

func TestCompile_TypeMismatch(t *testing.T) {
	scope := NewScope(testSurvey())

	tests := []struct {
		name string
		cond schema.ConditionSpec
	}{
		{"ordering on choice field", schema.ConditionSpec{Field: "country", Operator: "greater_than", Value: 10}},
		{"textual on number field", schema.ConditionSpec{Field: "age", Operator: "starts_with", Value: "1"}},
		{"non-numeric ordering literal", schema.ConditionSpec{Field: "age", Operator: "greater_than", Value: "eighteen"}},
		{"presence with literal", schema.ConditionSpec{Field: "age", Operator: "is_empty", Value: 0}},
		{"membership without list", schema.ConditionSpec{Field: "country", Operator: "in", Value: "FR"}},
		{"textual with non-string literal", schema.ConditionSpec{Field: "country", Operator: "contains", Value: 7}},
		{"unknown operator", schema.ConditionSpec{Field: "age", Operator: "matches", Value: "x"}},
		{"equality with list literal", schema.ConditionSpec{Field: "country", Operator: "equals", Value: []any{"FR", "DE"}}},
		{"equality with map literal", schema.ConditionSpec{Field: "country", Operator: "not_equals", Value: map[string]any{"code": "FR"}}},
		{"membership with list elements", schema.ConditionSpec{Field: "country", Operator: "in", Value: []any{[]any{"FR"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := &schema.RuleSpec{Conditions: []schema.ConditionSpec{tt.cond}}
			_, err := Compile(spec, OwnerRef{Kind: OwnerField, ID: "employment", Bound: 2}, scope)
			if err == nil {
				t.Fatal("Expected compile error")
			}
			var list *ErrorList
			if !errors.As(err, &list) {
				t.Fatalf("Expected *ErrorList, got %T", err)
			}
			if !list.HasKind(KindTypeMismatch) {
				t.Errorf("Expected a type_mismatch error, got: %v", list)
			}
		})
	}
}

func TestCompile_DateLiterals(t *testing.T) {
	scope := NewScope(testSurvey())
	owner := OwnerRef{Kind: OwnerField, ID: "nonexistent", Bound: 5}

	spec := &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "start_date", Operator: "greater_than_or_equals", Value: "2024-01-01"},
		},
	}
	if _, err := Compile(spec, owner, scope); err != nil {
		t.Errorf("Expected 2006-01-02 literal to compile, got: %v", err)
	}

	spec = &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "start_date", Operator: "less_than", Value: "not a date"},
		},
	}
	if _, err := Compile(spec, owner, scope); err == nil {
		t.Error("Expected non-date literal on a date field to fail")
	}
}

func TestCompile_AccumulatesAllErrors(t *testing.T) {
	scope := NewScope(testSurvey())
	spec := &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "ghost", Operator: "equals", Value: 1},
			{Field: "age", Operator: "starts_with", Value: "1"},
			{Field: "job_title", Operator: "equals", Value: "dev"},
		},
	}

	_, err := Compile(spec, OwnerRef{Kind: OwnerField, ID: "country", Bound: 1}, scope)
	if err == nil {
		t.Fatal("Expected compile errors")
	}

	var list *ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("Expected *ErrorList, got %T", err)
	}
	if list.Count() != 3 {
		t.Errorf("Expected 3 accumulated errors, got %d: %v", list.Count(), list)
	}
	if !list.HasKind(KindUnknownOperand) || !list.HasKind(KindTypeMismatch) || !list.HasKind(KindForwardReference) {
		t.Errorf("Expected one error of each kind, got: %v", list)
	}
}

func TestCompileSurvey_Valid(t *testing.T) {
	survey := testSurvey()
	survey.Sections[1].Fields[0].VisibleWhen = &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "age", Operator: "greater_than_or_equals", Value: 18},
		},
	}
	survey.Sections[0].Fields[0].ValidWhen = &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "age", Operator: "less_than", Value: 130},
		},
	}

	rs, err := CompileSurvey(survey)
	if err != nil {
		t.Fatalf("CompileSurvey failed: %v", err)
	}

	if _, ok := rs.Visibility["work"]; !ok {
		t.Error("Expected a visibility rule for the work section")
	}
	if _, ok := rs.Visibility["job_title"]; !ok {
		t.Error("Expected a visibility rule for job_title")
	}
	if _, ok := rs.Validation["age"]; !ok {
		t.Error("Expected a validation rule for age")
	}
	if _, ok := rs.Visibility["age"]; ok {
		t.Error("Did not expect a visibility rule for age")
	}
}

func TestCompileSurvey_ValidationMayReferenceOwnField(t *testing.T) {
	survey := testSurvey()
	survey.Sections[0].Fields[0].ValidWhen = &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "age", Operator: "greater_than", Value: 0},
		},
	}

	if _, err := CompileSurvey(survey); err != nil {
		t.Errorf("Expected a self-referencing validation rule to compile, got: %v", err)
	}
}

func TestCompileSurvey_SectionRuleCannotReferenceOwnFields(t *testing.T) {
	survey := testSurvey()
	survey.Sections[1].VisibleWhen = &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "job_title", Operator: "is_not_empty"},
		},
	}

	_, err := CompileSurvey(survey)
	if err == nil {
		t.Fatal("Expected compile error for section rule reading its own field")
	}
	var list *ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("Expected *ErrorList, got %T", err)
	}
	if !list.HasKind(KindForwardReference) {
		t.Errorf("Expected a forward_reference error, got: %v", list)
	}
}

func TestCompileSurvey_ReportsAcrossRules(t *testing.T) {
	survey := testSurvey()
	survey.Sections[0].Fields[1].VisibleWhen = &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "missing_one", Operator: "equals", Value: 1},
		},
	}
	survey.Sections[1].Fields[0].VisibleWhen = &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "missing_two", Operator: "equals", Value: 2},
		},
	}

	_, err := CompileSurvey(survey)
	if err == nil {
		t.Fatal("Expected compile errors")
	}
	var list *ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("Expected *ErrorList, got %T", err)
	}
	if list.Count() != 2 {
		t.Errorf("Expected both rules' errors in one report, got %d: %v", list.Count(), list)
	}
}

func TestScope_Lookup(t *testing.T) {
	scope := NewScope(testSurvey())

	typ, index, ok := scope.Lookup("employment")
	if !ok {
		t.Fatal("Expected employment to exist in scope")
	}
	if typ != schema.FieldTypeSingleChoice {
		t.Errorf("Lookup type = %q, want single_choice", typ)
	}
	if index != 2 {
		t.Errorf("Lookup index = %d, want 2", index)
	}

	if _, _, ok := scope.Lookup("ghost"); ok {
		t.Error("Expected lookup of a missing field to fail")
	}
}

func TestSectionStart(t *testing.T) {
	survey := testSurvey()

	if got := SectionStart(survey, "demographics"); got != 0 {
		t.Errorf("SectionStart(demographics) = %d, want 0", got)
	}
	if got := SectionStart(survey, "work"); got != 3 {
		t.Errorf("SectionStart(work) = %d, want 3", got)
	}
}
