package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseFile reads and parses a survey definition from a YAML file.
func ParseFile(path string) (*Survey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read survey file %q: %w", path, err)
	}

	survey, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse survey file %q: %w", path, err)
	}

	return survey, nil
}

// ParseBytes parses a survey definition from YAML bytes and performs the
// structural checks that do not require rule compilation: non-empty
// identifiers, known field types, and uniqueness of section and field IDs.
// Rule-level checks (operands, types, references) belong to the compiler.
func ParseBytes(data []byte) (*Survey, error) {
	var survey Survey
	if err := yaml.Unmarshal(data, &survey); err != nil {
		return nil, err
	}

	if err := checkStructure(&survey); err != nil {
		return nil, err
	}

	return &survey, nil
}

// checkStructure validates the parts of a survey that are independent of
// rule semantics.
func checkStructure(s *Survey) error {
	if s.ID == "" {
		return fmt.Errorf("survey id cannot be empty")
	}
	if s.Version == "" {
		return fmt.Errorf("survey %q: version cannot be empty", s.ID)
	}
	if len(s.Sections) == 0 {
		return fmt.Errorf("survey %q: must have at least one section", s.ID)
	}

	sectionIDs := make(map[string]bool)
	fieldIDs := make(map[string]bool)

	for i, section := range s.Sections {
		if section.ID == "" {
			return fmt.Errorf("survey %q: section %d has empty id", s.ID, i)
		}
		if sectionIDs[section.ID] {
			return fmt.Errorf("survey %q: duplicate section id %q", s.ID, section.ID)
		}
		sectionIDs[section.ID] = true

		for j, field := range section.Fields {
			if field.ID == "" {
				return fmt.Errorf("section %q: field %d has empty id", section.ID, j)
			}
			if fieldIDs[field.ID] {
				return fmt.Errorf("section %q: duplicate field id %q", section.ID, field.ID)
			}
			fieldIDs[field.ID] = true

			if !field.Type.IsKnown() {
				return fmt.Errorf("field %q: unknown field type %q", field.ID, field.Type)
			}

			if field.Type == FieldTypeSingleChoice || field.Type == FieldTypeMultiChoice {
				if len(field.Options) == 0 {
					return fmt.Errorf("field %q: choice fields require options", field.ID)
				}
			}
		}
	}

	return nil
}
