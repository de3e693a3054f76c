package graph

import (
	"canvass-hq/canvass/pkg/logic/compiler"
	"canvass-hq/canvass/pkg/logic/eval"
	"canvass-hq/canvass/pkg/schema"
)

// DependencyGraph is the compiled, immutable evaluation artifact for one
// survey version: the survey structure, its compiled rules, and the
// operand edges between rule owners and the fields they reference.
type DependencyGraph struct {
	survey *schema.Survey
	rules  *compiler.Ruleset

	// edges maps a rule owner (section or field ID) to the field IDs its
	// rule references.
	edges map[string][]string
}

// Build constructs the dependency graph for a compiled survey and verifies
// acyclicity. A validation rule's reference to its own field is a
// constraint on the answer, not a dependency, so self-edges from
// validation rules are not recorded.
func Build(survey *schema.Survey, rules *compiler.Ruleset) (*DependencyGraph, error) {
	g := &DependencyGraph{
		survey: survey,
		rules:  rules,
		edges:  make(map[string][]string),
	}

	for owner, rule := range rules.Visibility {
		g.edges[owner] = append(g.edges[owner], rule.Operands...)
	}
	for owner, rule := range rules.Validation {
		for _, operand := range rule.Operands {
			if operand != owner {
				g.edges[owner] = append(g.edges[owner], operand)
			}
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &CyclicDependencyError{Cycle: cycle}
	}

	return g, nil
}

// Survey returns the survey definition this graph was built from.
func (g *DependencyGraph) Survey() *schema.Survey {
	return g.survey
}

// Version returns the survey version identifier this graph belongs to.
func (g *DependencyGraph) Version() string {
	return g.survey.Version
}

// ValidationRule returns the compiled validation rule for a field, or nil
// if the field has none.
func (g *DependencyGraph) ValidationRule(fieldID string) *compiler.CompiledRule {
	return g.rules.Validation[fieldID]
}

// VisibleSet walks definitions in declaration order and returns the
// ordered IDs of currently visible fields. Rules may only reference fields
// declared earlier, so evaluating each rule against the full snapshot is
// identical to evaluating against the answers accumulated during the walk.
func (g *DependencyGraph) VisibleSet(answers eval.Snapshot) []string {
	visible := make([]string, 0, g.survey.FieldCount())

	for _, section := range g.survey.Sections {
		if !g.ownerVisible(section.ID, answers) {
			continue
		}
		for _, field := range section.Fields {
			if g.ownerVisible(field.ID, answers) {
				visible = append(visible, field.ID)
			}
		}
	}

	return visible
}

// VisibleFields returns the visible set as a membership map.
func (g *DependencyGraph) VisibleFields(answers eval.Snapshot) map[string]bool {
	set := make(map[string]bool)
	for _, id := range g.VisibleSet(answers) {
		set[id] = true
	}
	return set
}

// ownerVisible evaluates the visibility rule of a section or field.
// Owners without a rule are always visible.
func (g *DependencyGraph) ownerVisible(ownerID string, answers eval.Snapshot) bool {
	rule, ok := g.rules.Visibility[ownerID]
	if !ok {
		return true
	}
	return eval.Evaluate(rule.Expr, answers)
}
