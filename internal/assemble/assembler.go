// Package assemble composes fact, narrative and verdict records into
// immutable reports. Pure composition: no model calls, deterministic given
// its inputs.
package assemble

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scribelab/chronicler/internal/model"
)

// GapUnresolvedError reports assembly attempted while template-required
// fields remain absent with no default to fall back on. The caller must
// route back to gap resolution.
type GapUnresolvedError struct {
	Fields []string
}

func (e *GapUnresolvedError) Error() string {
	return fmt.Sprintf("required fields unresolved: %s", strings.Join(e.Fields, ", "))
}

// Draft builds a draft report awaiting verification. Template defaults are
// the lowest-priority fallback: they fill only fields still absent after
// extraction and user resolution, never overriding explicit data.
func Draft(facts model.FactRecord, narrative model.NarrativeRecord, tpl model.TemplateDefinition, sessionID string) (model.Report, error) {
	resolved := facts.Clone()

	var unresolved []string
	for _, field := range tpl.FieldOrder() {
		if !resolved.IsMissing(field) {
			continue
		}
		if def, ok := tpl.Default(field); ok {
			if err := resolved.SetString(field, def); err != nil {
				return model.Report{}, fmt.Errorf("apply default for %s: %w", field, err)
			}
			continue
		}
		if tpl.RequiresField(field) {
			unresolved = append(unresolved, field)
		}
	}
	if len(unresolved) > 0 {
		return model.Report{}, &GapUnresolvedError{Fields: unresolved}
	}

	return model.Report{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		TemplateID: tpl.ID,
		CreatedAt:  time.Now().UTC(),
		Facts:      resolved,
		Narrative:  narrative,
	}, nil
}

// Finalize attaches the critic's verdict and marks the report final. The
// draft is not mutated; the final report is a new value owning its own
// records.
func Finalize(draft model.Report, verdict model.Verdict) model.Report {
	final := draft
	final.Facts = draft.Facts.Clone()
	final.Verdict = verdict
	final.Final = true
	return final
}
