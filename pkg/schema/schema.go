package schema

// FieldType represents the declared type of a survey field.
type FieldType string

const (
	FieldTypeShortText    FieldType = "short_text"
	FieldTypeLongText     FieldType = "long_text"
	FieldTypeNumber       FieldType = "number"
	FieldTypeDate         FieldType = "date"
	FieldTypeSingleChoice FieldType = "single_choice"
	FieldTypeMultiChoice  FieldType = "multi_choice"
	FieldTypeBoolean      FieldType = "boolean"
)

// FieldTypes lists every supported field type.
var FieldTypes = []FieldType{
	FieldTypeShortText,
	FieldTypeLongText,
	FieldTypeNumber,
	FieldTypeDate,
	FieldTypeSingleChoice,
	FieldTypeMultiChoice,
	FieldTypeBoolean,
}

// IsKnown returns true if t is one of the supported field types.
func (t FieldType) IsKnown() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Survey is an immutable published survey version.
type Survey struct {
	ID          string     `yaml:"id" json:"id"`
	Version     string     `yaml:"version" json:"version"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Sections    []*Section `yaml:"sections" json:"sections"`
}

// Section groups fields and may carry a visibility rule. A section rule may
// only reference fields declared in earlier sections.
type Section struct {
	ID          string    `yaml:"id" json:"id"`
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	VisibleWhen *RuleSpec `yaml:"visible_when,omitempty" json:"visible_when,omitempty"`
	Fields      []*Field  `yaml:"fields" json:"fields"`
}

// Field is a single question within a section.
type Field struct {
	ID          string    `yaml:"id" json:"id"`
	Type        FieldType `yaml:"type" json:"type"`
	Label       string    `yaml:"label" json:"label"`
	Required    bool      `yaml:"required,omitempty" json:"required,omitempty"`
	Options     []Option  `yaml:"options,omitempty" json:"options,omitempty"`
	VisibleWhen *RuleSpec `yaml:"visible_when,omitempty" json:"visible_when,omitempty"`
	ValidWhen   *RuleSpec `yaml:"valid_when,omitempty" json:"valid_when,omitempty"`
}

// Option is a selectable choice for single_choice and multi_choice fields.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// FieldCount returns the total number of fields across all sections.
func (s *Survey) FieldCount() int {
	n := 0
	for _, section := range s.Sections {
		n += len(section.Fields)
	}
	return n
}

// FieldByID returns the field with the given ID, or nil if absent.
func (s *Survey) FieldByID(id string) *Field {
	for _, section := range s.Sections {
		for _, field := range section.Fields {
			if field.ID == id {
				return field
			}
		}
	}
	return nil
}

// Walk visits every field in declaration order: sections sequential, fields
// within a section sequential. This is the canonical evaluation order for
// every rule in the survey.
func (s *Survey) Walk(visit func(section *Section, field *Field)) {
	for _, section := range s.Sections {
		for _, field := range section.Fields {
			visit(section, field)
		}
	}
}
