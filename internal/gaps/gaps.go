// Package gaps identifies template-required facts still absent after
// extraction and applies user-supplied resolutions. Both operations are
// pure: no model calls, no shared state.
package gaps

import (
	"fmt"

	"github.com/scribelab/chronicler/internal/model"
)

// Modality hints which input widget suits a gap.
type Modality string

const (
	ModalityDate     Modality = "date"   // date picker
	ModalityChoice   Modality = "choice" // pick from a known set
	ModalityFreeText Modality = "text"   // free text entry
)

// Gap names one template-required field that is absent from a FactRecord,
// with a hint for how a UI should collect it.
type Gap struct {
	Field    string
	Modality Modality
	Options  []string // populated for ModalityChoice
}

// Find compares a FactRecord against a template's required field set and
// returns the gaps in the template's display order.
func Find(facts model.FactRecord, tpl model.TemplateDefinition) []Gap {
	var out []Gap
	for _, field := range tpl.FieldOrder() {
		if !tpl.RequiresField(field) {
			continue
		}
		if !facts.IsMissing(field) {
			continue
		}
		out = append(out, Gap{
			Field:    field,
			Modality: modalityFor(field, tpl),
			Options:  optionsFor(field, tpl),
		})
	}
	return out
}

func modalityFor(field string, tpl model.TemplateDefinition) Modality {
	if field == model.FieldDate {
		return ModalityDate
	}
	if len(optionsFor(field, tpl)) > 0 {
		return ModalityChoice
	}
	return ModalityFreeText
}

func optionsFor(field string, tpl model.TemplateDefinition) []string {
	if opts, ok := tpl.Choices[field]; ok && len(opts) > 0 {
		return opts
	}
	if field == model.FieldMode {
		return model.ModeChoices
	}
	return nil
}

// Resolve applies user-supplied values and returns a new FactRecord with
// those fields present. User input is trusted ground truth, so there is no
// grounding re-check; values are still coerced to the field's type.
func Resolve(facts model.FactRecord, values map[string]string) (model.FactRecord, error) {
	out := facts.Clone()
	for field, value := range values {
		if err := out.SetString(field, value); err != nil {
			return model.FactRecord{}, fmt.Errorf("resolve %s: %w", field, err)
		}
	}
	return out, nil
}
