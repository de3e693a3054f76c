package compiler

import (
	"canvass-hq/canvass/pkg/schema"
)

// fieldInfo records what the compiler needs to know about a declared field.
type fieldInfo struct {
	typ   schema.FieldType
	index int // declaration index across the whole survey
}

// Scope holds the field declarations of one survey version, in evaluation
// order. It answers the existence, type, and ordering questions the
// compiler asks about operands.
type Scope struct {
	fields map[string]fieldInfo
	order  []string
}

// NewScope builds a scope from a survey's declaration order.
func NewScope(survey *schema.Survey) *Scope {
	s := &Scope{
		fields: make(map[string]fieldInfo),
	}
	survey.Walk(func(_ *schema.Section, field *schema.Field) {
		s.fields[field.ID] = fieldInfo{
			typ:   field.Type,
			index: len(s.order),
		}
		s.order = append(s.order, field.ID)
	})
	return s
}

// Lookup returns the declared type and declaration index of a field.
// The boolean result is false if the field does not exist.
func (s *Scope) Lookup(fieldID string) (schema.FieldType, int, bool) {
	info, ok := s.fields[fieldID]
	if !ok {
		return "", 0, false
	}
	return info.typ, info.index, true
}

// FieldIndex returns the declaration index of a field, or -1 if absent.
func (s *Scope) FieldIndex(fieldID string) int {
	info, ok := s.fields[fieldID]
	if !ok {
		return -1
	}
	return info.index
}

// SectionStart returns the declaration index of the first field in the
// given section, which is the exclusive upper bound for operands of that
// section's visibility rule. For a section with no fields it returns the
// index the section's first field would have had.
func SectionStart(survey *schema.Survey, sectionID string) int {
	index := 0
	for _, section := range survey.Sections {
		if section.ID == sectionID {
			return index
		}
		index += len(section.Fields)
	}
	return index
}
