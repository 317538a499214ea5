package critic

import (
	"fmt"

	"github.com/scribelab/chronicler/internal/model"
)

// Salience penalties. An unsupported number, date or name is a worse
// failure than an unsupported incidental phrase, so it costs more.
func penalty(kind model.ClaimKind) int {
	switch kind {
	case model.ClaimKindNumber, model.ClaimKindDate, model.ClaimKindName:
		return 15
	case model.ClaimKindEntity:
		return 10
	default:
		return 5
	}
}

// Score computes the deterministic verdict over an enumerated claim set.
//
//	confidence = max(0, 100 - Σ penalty(kind) over unsupported claims)
//
// Only unsupported claims move the score, which keeps it monotone both
// ways: removing a supported claim cannot lower it, and adding an
// unsupported claim cannot raise it. A fully grounded report scores 100.
func Score(claims []model.Claim, reasoning string) model.Verdict {
	if len(claims) == 0 {
		return model.Verdict{
			Confidence: 100,
			Reasoning:  appendNote(reasoning, "No discrete claims were found in the report."),
		}
	}

	confidence := 100
	grounded := 0
	var flagged []model.Claim
	for _, c := range claims {
		if c.Grounded {
			grounded++
			continue
		}
		confidence -= penalty(c.Kind)
		flagged = append(flagged, c)
	}
	if confidence < 0 {
		confidence = 0
	}

	return model.Verdict{
		Confidence:    confidence,
		GroundedCount: grounded,
		TotalCount:    len(claims),
		Flagged:       flagged,
		Reasoning:     reasoning,
	}
}

func appendNote(reasoning, note string) string {
	if reasoning == "" {
		return note
	}
	return fmt.Sprintf("%s %s", reasoning, note)
}
