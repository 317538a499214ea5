package model

import "time"

// Report is the final composition of one pipeline run. It owns its facts,
// narrative and verdict: nothing is shared with other reports, and nothing
// is mutated after assembly. Regeneration yields a new Report with a new ID,
// preserving prior versions for history.
type Report struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	TemplateID string          `json:"template_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Facts      FactRecord      `json:"facts"`
	Narrative  NarrativeRecord `json:"narrative"`
	Verdict    Verdict         `json:"verdict"`
	Final      bool            `json:"final"` // false while awaiting verification
}
