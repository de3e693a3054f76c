package compiler

import (
	"canvass-hq/canvass/pkg/schema"
)

// Ruleset is the complete compiled rule output for one survey version.
// Owners without a rule are simply absent from the maps; absence means
// "always visible" or "always valid".
type Ruleset struct {
	// Visibility maps a section or field ID to its compiled visibility rule.
	Visibility map[string]*CompiledRule

	// Validation maps a field ID to its compiled validation rule.
	Validation map[string]*CompiledRule
}

// CompileSurvey compiles every rule in a survey version. Errors are
// accumulated across all rules, so one call reports everything that is
// wrong with the version. A survey version with any compile error must not
// be published.
func CompileSurvey(survey *schema.Survey) (*Ruleset, error) {
	scope := NewScope(survey)
	errs := NewErrorList()

	rs := &Ruleset{
		Visibility: make(map[string]*CompiledRule),
		Validation: make(map[string]*CompiledRule),
	}

	index := 0
	for _, section := range survey.Sections {
		owner := OwnerRef{Kind: OwnerSection, ID: section.ID, Bound: index}
		addRule(rs.Visibility, section.VisibleWhen, owner, scope, errs)

		for _, field := range section.Fields {
			visOwner := OwnerRef{Kind: OwnerField, ID: field.ID, Bound: index}
			addRule(rs.Visibility, field.VisibleWhen, visOwner, scope, errs)

			// Validation rules may reference the field itself.
			valOwner := OwnerRef{Kind: OwnerField, ID: field.ID, Bound: index + 1}
			addRule(rs.Validation, field.ValidWhen, valOwner, scope, errs)

			index++
		}
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return rs, nil
}

// addRule compiles one rule spec and records it under its owner ID,
// folding any compile errors into errs.
func addRule(dst map[string]*CompiledRule, spec *schema.RuleSpec, owner OwnerRef, scope *Scope, errs *ErrorList) {
	rule, err := Compile(spec, owner, scope)
	if err != nil {
		if list, ok := err.(*ErrorList); ok {
			errs.Errors = append(errs.Errors, list.Errors...)
		}
		return
	}
	if rule != nil {
		dst[owner.ID] = rule
	}
}
