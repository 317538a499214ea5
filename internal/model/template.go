package model

// DisplayGroup orders related fields for presentation and gap prompting.
type DisplayGroup struct {
	Title  string   `json:"title" yaml:"title"`
	Fields []string `json:"fields" yaml:"fields"`
}

// TemplateDefinition is a named bundle of required fields, default values
// and display ordering. Templates are authored outside the pipeline and are
// read-only inputs to gap resolution and assembly. Reports reference the
// template used but do not own it.
type TemplateDefinition struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string              `json:"category,omitempty" yaml:"category,omitempty"`
	Required    []string            `json:"required" yaml:"required"`
	Defaults    map[string]string   `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Choices     map[string][]string `json:"choices,omitempty" yaml:"choices,omitempty"`
	Groups      []DisplayGroup      `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// FieldOrder returns the template's display order for fields, falling back
// to the canonical order for fields not named in any group.
func (t TemplateDefinition) FieldOrder() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range t.Groups {
		for _, f := range g.Fields {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	for _, f := range OrderedFields() {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// RequiresField reports whether the template requires the named field.
func (t TemplateDefinition) RequiresField(field string) bool {
	for _, f := range t.Required {
		if f == field {
			return true
		}
	}
	return false
}

// Default returns the template's default value for a field, if any.
func (t TemplateDefinition) Default(field string) (string, bool) {
	v, ok := t.Defaults[field]
	return v, ok
}
