package render

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/scribelab/chronicler/internal/model"
)

func sampleReport() model.Report {
	return model.Report{
		ID:         "r-1",
		TemplateID: "workshop",
		CreatedAt:  time.Date(2024, 1, 26, 10, 0, 0, 0, time.UTC),
		Facts: model.FactRecord{
			EventTitle:      model.TextOf("Machine Learning Workshop"),
			Date:            model.DateOf("2024-01-25"),
			Venue:           model.TextOf("Main Auditorium"),
			SpeakerName:     model.TextOf("Dr. Sharma"),
			AttendanceCount: model.CountOf(85),
		},
		Narrative: model.NarrativeRecord{
			ExecutiveSummary: "The workshop was conducted successfully.",
			KeyTakeaways:     []string{"Hands-on exposure."},
		},
		Verdict: model.Verdict{Confidence: 100, GroundedCount: 5, TotalCount: 5},
		Final:   true,
	}
}

func TestResolve_ProjectsAbsenceToPlaceholder(t *testing.T) {
	res := Resolve(sampleReport())

	if res.Facts.EventTitle != "Machine Learning Workshop" {
		t.Errorf("present value lost: %q", res.Facts.EventTitle)
	}
	if res.Facts.Organizer != Placeholder {
		t.Errorf("absent organizer should project to %q, got %q", Placeholder, res.Facts.Organizer)
	}
	if res.Facts.VolunteerCount != Placeholder {
		t.Errorf("absent count should project to %q, got %q", Placeholder, res.Facts.VolunteerCount)
	}
	if res.Facts.AttendanceCount != "85" {
		t.Errorf("present count should project to its digits, got %q", res.Facts.AttendanceCount)
	}
	if len(res.Facts.Judges) != 1 || res.Facts.Judges[0] != Placeholder {
		t.Errorf("absent list should get a placeholder entry, got %v", res.Facts.Judges)
	}
}

func TestResolve_PlaceholderTakeaway(t *testing.T) {
	r := sampleReport()
	r.Narrative.KeyTakeaways = nil
	res := Resolve(r)
	if len(res.KeyTakeaways) != 1 || res.KeyTakeaways[0] != placeholderTakeaway {
		t.Errorf("empty takeaways should get the stand-in bullet, got %v", res.KeyTakeaways)
	}
}

func TestResolve_EmptySummary(t *testing.T) {
	r := sampleReport()
	r.Narrative.ExecutiveSummary = "  "
	res := Resolve(r)
	if res.ExecutiveSummary != Placeholder {
		t.Errorf("blank summary should project to %q, got %q", Placeholder, res.ExecutiveSummary)
	}
}

func TestValidate_AcceptsResolvedReport(t *testing.T) {
	res := Resolve(sampleReport())
	if err := Validate(res); err != nil {
		t.Errorf("resolved report should satisfy the null-safety contract: %v", err)
	}
}

func TestValidate_RejectsEmptyField(t *testing.T) {
	res := Resolve(sampleReport())
	res.Facts.Venue = ""
	if err := Validate(res); err == nil {
		t.Error("empty field should fail validation")
	}
}

func TestValidate_RejectsEmptyListEntry(t *testing.T) {
	res := Resolve(sampleReport())
	res.Facts.Judges = []string{"Dr. Rao", " "}
	if err := Validate(res); err == nil {
		t.Error("blank list entry should fail validation")
	}

	res = Resolve(sampleReport())
	res.KeyTakeaways = nil
	if err := Validate(res); err == nil {
		t.Error("nil takeaways should fail validation")
	}
}

func TestMarkdown_Layout(t *testing.T) {
	res := Resolve(sampleReport())
	doc := Markdown(res, true)

	for _, want := range []string{
		"# Event Report: Machine Learning Workshop",
		"## Executive Summary",
		"## Key Takeaways",
		"## Verification",
		"Confidence: 100/100",
		"report r-1",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	noFooter := Markdown(res, false)
	if strings.Contains(noFooter, "report r-1") {
		t.Error("footer should be omitted when disabled")
	}
}

func TestMarkdown_FlaggedClaims(t *testing.T) {
	r := sampleReport()
	r.Verdict = model.Verdict{
		Confidence: 85,
		Flagged: []model.Claim{
			{Text: "120 students", Kind: model.ClaimKindNumber, Origin: "narrative", Reason: "source says 85"},
		},
	}
	doc := Markdown(Resolve(r), false)
	if !strings.Contains(doc, "Flagged claims") || !strings.Contains(doc, "120 students") {
		t.Error("flagged claims should be listed in the verification section")
	}
}

func TestWriteMarkdown_ValidatesFirst(t *testing.T) {
	r := sampleReport()
	r.Narrative.KeyTakeaways = []string{""}
	path := t.TempDir() + "/report.md"
	if err := WriteMarkdown(r, path, true); err == nil {
		t.Error("WriteMarkdown should refuse a report violating the contract")
	}
}

func TestWriteJSON_AbsentFieldsAreNull(t *testing.T) {
	path := t.TempDir() + "/report.json"
	if err := WriteJSON(sampleReport(), path); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), `"organizer": null`) {
		t.Error("absent fields should serialize as explicit null")
	}
	if strings.Contains(string(data), Placeholder) {
		t.Error("the JSON record must never carry the display placeholder")
	}
}
