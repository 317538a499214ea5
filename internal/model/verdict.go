package model

// Claim is one discrete factual assertion found in a draft report: a name,
// number, date or other entity that can be checked against the source notes.
type Claim struct {
	Text     string    `json:"text"`
	Kind     ClaimKind `json:"kind"`
	Origin   string    `json:"origin,omitempty"` // field or section the claim appears in
	Grounded bool      `json:"grounded"`
	Reason   string    `json:"reason,omitempty"` // why the claim is unsupported
}

// ClaimKind categorizes a claim for salience weighting.
type ClaimKind string

const (
	ClaimKindNumber ClaimKind = "number"
	ClaimKindDate   ClaimKind = "date"
	ClaimKindName   ClaimKind = "name"
	ClaimKindEntity ClaimKind = "entity"
	ClaimKindOther  ClaimKind = "other"
)

// Verdict is the critic's verdict over one draft report. Immutable once
// produced; identical inputs always yield an identical verdict.
type Verdict struct {
	Confidence    int     `json:"confidence"` // 0-100
	GroundedCount int     `json:"grounded_count"`
	TotalCount    int     `json:"total_count"`
	Flagged       []Claim `json:"flagged,omitempty"` // unsupported claims only
	Reasoning     string  `json:"reasoning,omitempty"`
}

// Safe reports whether the verdict found no unsupported claims.
func (v Verdict) Safe() bool { return len(v.Flagged) == 0 }
