package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SchemaValidationError reports that a provider's structured output did not
// match the expected shape. The Issues text is written to be fed back to the
// model verbatim during the one corrective attempt.
type SchemaValidationError struct {
	Record string
	Issues []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("%s payload invalid: %s", e.Record, strings.Join(e.Issues, "; "))
}

// dateLayouts are the accepted input formats, tried in order. Output is
// always YYYY-MM-DD.
var dateLayouts = []string{
	"2006-01-02",
	"2 January 2006",
	"02 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006/01/02",
}

// NormalizeDate parses a date under the accepted layouts and returns it as
// YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q (expected e.g. 2024-01-25 or 25 January 2024)", s)
}

// factPayload is the wire shape the extractor asks the provider for.
// Pointers distinguish JSON null (field absent) from supplied values.
type factPayload struct {
	EventTitle          *string   `json:"event_title"`
	Date                *string   `json:"date"`
	Venue               *string   `json:"venue"`
	SpeakerName         *string   `json:"speaker_name"`
	AttendanceCount     *int      `json:"attendance_count"`
	Organizer           *string   `json:"organizer"`
	StudentCoordinators *[]string `json:"student_coordinators"`
	FacultyCoordinators *[]string `json:"faculty_coordinators"`
	Judges              *[]string `json:"judges"`
	VolunteerCount      *int      `json:"volunteer_count"`
	TargetAudience      *string   `json:"target_audience"`
	Mode                *string   `json:"mode"`
	Agenda              *string   `json:"agenda"`
	MediaLink           *string   `json:"media_link"`
	Winners             *[]Winner `json:"winners"`
	Highlights          *[]string `json:"highlights"`
}

// ParseFactPayload validates raw provider output and builds a FactRecord.
// Every issue found is collected so a corrective prompt can name all of them
// at once. A nil error guarantees every field is either a validated typed
// value or explicitly absent.
func ParseFactPayload(raw []byte) (FactRecord, error) {
	var p factPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return FactRecord{}, &SchemaValidationError{
			Record: "facts",
			Issues: []string{fmt.Sprintf("output is not valid JSON for the fact schema: %v", err)},
		}
	}

	var issues []string
	r := FactRecord{}

	r.EventTitle = textFrom(p.EventTitle)
	r.Venue = textFrom(p.Venue)
	r.SpeakerName = textFrom(p.SpeakerName)
	r.Organizer = textFrom(p.Organizer)
	r.TargetAudience = textFrom(p.TargetAudience)
	r.Agenda = textFrom(p.Agenda)
	r.MediaLink = textFrom(p.MediaLink)

	if p.Date != nil && strings.TrimSpace(*p.Date) != "" {
		iso, err := NormalizeDate(*p.Date)
		if err != nil {
			issues = append(issues, fmt.Sprintf("date: %v", err))
		} else {
			r.Date = DateOf(iso)
		}
	}

	if p.AttendanceCount != nil {
		if *p.AttendanceCount < 0 {
			issues = append(issues, "attendance_count: must not be negative")
		} else {
			r.AttendanceCount = CountOf(*p.AttendanceCount)
		}
	}
	if p.VolunteerCount != nil {
		if *p.VolunteerCount < 0 {
			issues = append(issues, "volunteer_count: must not be negative")
		} else {
			r.VolunteerCount = CountOf(*p.VolunteerCount)
		}
	}

	if p.Mode != nil && strings.TrimSpace(*p.Mode) != "" {
		mode, ok := canonicalMode(*p.Mode)
		if !ok {
			issues = append(issues, fmt.Sprintf("mode: %q is not one of %s", *p.Mode, strings.Join(ModeChoices, ", ")))
		} else {
			r.Mode = TextOf(mode)
		}
	}

	r.StudentCoordinators = listFrom(p.StudentCoordinators)
	r.FacultyCoordinators = listFrom(p.FacultyCoordinators)
	r.Judges = listFrom(p.Judges)
	r.Highlights = listFrom(p.Highlights)

	if p.Winners != nil {
		r.Winners = WinnersOf(*p.Winners)
	}

	if len(issues) > 0 {
		return FactRecord{}, &SchemaValidationError{Record: "facts", Issues: issues}
	}
	return r, nil
}

func textFrom(s *string) Text {
	if s == nil {
		return AbsentText()
	}
	return TextOf(*s)
}

func listFrom(items *[]string) List {
	if items == nil {
		return AbsentList()
	}
	return ListOf(*items)
}

func canonicalMode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, c := range ModeChoices {
		if strings.EqualFold(s, c) {
			return c, true
		}
	}
	return "", false
}

// narrativePayload is the wire shape the ghostwriter asks the provider for.
type narrativePayload struct {
	ExecutiveSummary *string  `json:"executive_summary"`
	KeyTakeaways     []string `json:"key_takeaways"`
}

// ParseNarrativePayload validates raw provider output and builds a
// NarrativeRecord.
func ParseNarrativePayload(raw []byte) (NarrativeRecord, error) {
	var p narrativePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return NarrativeRecord{}, &SchemaValidationError{
			Record: "narrative",
			Issues: []string{fmt.Sprintf("output is not valid JSON for the narrative schema: %v", err)},
		}
	}

	var issues []string
	if p.ExecutiveSummary == nil || strings.TrimSpace(*p.ExecutiveSummary) == "" {
		issues = append(issues, "executive_summary: required and must not be empty")
	}
	takeaways := make([]string, 0, len(p.KeyTakeaways))
	for _, t := range p.KeyTakeaways {
		t = strings.TrimSpace(t)
		if t != "" {
			takeaways = append(takeaways, t)
		}
	}
	if len(issues) > 0 {
		return NarrativeRecord{}, &SchemaValidationError{Record: "narrative", Issues: issues}
	}
	return NarrativeRecord{
		ExecutiveSummary: strings.TrimSpace(*p.ExecutiveSummary),
		KeyTakeaways:     takeaways,
	}, nil
}

// claimsPayload is the wire shape the critic asks the provider for.
type claimsPayload struct {
	Claims    []claimPayload `json:"claims"`
	Reasoning *string        `json:"reasoning"`
}

type claimPayload struct {
	Text     *string `json:"text"`
	Kind     *string `json:"kind"`
	Origin   *string `json:"origin"`
	Grounded *bool   `json:"grounded"`
	Reason   *string `json:"reason"`
}

// ParseClaimsPayload validates raw provider output from the verification
// call and returns the enumerated claims plus the reasoning trace.
func ParseClaimsPayload(raw []byte) ([]Claim, string, error) {
	var p claimsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, "", &SchemaValidationError{
			Record: "claims",
			Issues: []string{fmt.Sprintf("output is not valid JSON for the claims schema: %v", err)},
		}
	}

	var issues []string
	claims := make([]Claim, 0, len(p.Claims))
	for i, c := range p.Claims {
		if c.Text == nil || strings.TrimSpace(*c.Text) == "" {
			issues = append(issues, fmt.Sprintf("claims[%d].text: required", i))
			continue
		}
		if c.Grounded == nil {
			issues = append(issues, fmt.Sprintf("claims[%d].grounded: required", i))
			continue
		}
		kind := ClaimKindOther
		if c.Kind != nil {
			k, ok := parseClaimKind(*c.Kind)
			if !ok {
				issues = append(issues, fmt.Sprintf("claims[%d].kind: %q is not a known claim kind", i, *c.Kind))
				continue
			}
			kind = k
		}
		claim := Claim{
			Text:     strings.TrimSpace(*c.Text),
			Kind:     kind,
			Grounded: *c.Grounded,
		}
		if c.Origin != nil {
			claim.Origin = strings.TrimSpace(*c.Origin)
		}
		if c.Reason != nil {
			claim.Reason = strings.TrimSpace(*c.Reason)
		}
		claims = append(claims, claim)
	}
	if len(issues) > 0 {
		return nil, "", &SchemaValidationError{Record: "claims", Issues: issues}
	}

	reasoning := ""
	if p.Reasoning != nil {
		reasoning = strings.TrimSpace(*p.Reasoning)
	}
	return claims, reasoning, nil
}

func parseClaimKind(s string) (ClaimKind, bool) {
	switch ClaimKind(strings.ToLower(strings.TrimSpace(s))) {
	case ClaimKindNumber:
		return ClaimKindNumber, true
	case ClaimKindDate:
		return ClaimKindDate, true
	case ClaimKindName:
		return ClaimKindName, true
	case ClaimKindEntity:
		return ClaimKindEntity, true
	case ClaimKindOther:
		return ClaimKindOther, true
	default:
		return "", false
	}
}
