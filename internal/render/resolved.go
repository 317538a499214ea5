// Package render is the boundary to the out-of-scope rendering
// collaborator. The renderer is promised a fully-resolved view: every
// absent field projected to a placeholder string, every empty list given a
// renderable stand-in. The placeholder exists only here; core logic never
// stores or compares "N/A".
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scribelab/chronicler/internal/model"
)

// Placeholder shown for absent fields.
const Placeholder = "N/A"

// placeholderTakeaway keeps the takeaway list renderable when empty.
const placeholderTakeaway = "No specific takeaways recorded."

// ResolvedFacts is the fact record with absence already projected away.
type ResolvedFacts struct {
	EventTitle          string         `json:"event_title"`
	Date                string         `json:"date"`
	Venue               string         `json:"venue"`
	SpeakerName         string         `json:"speaker_name"`
	AttendanceCount     string         `json:"attendance_count"`
	Organizer           string         `json:"organizer"`
	StudentCoordinators []string       `json:"student_coordinators"`
	FacultyCoordinators []string       `json:"faculty_coordinators"`
	Judges              []string       `json:"judges"`
	VolunteerCount      string         `json:"volunteer_count"`
	TargetAudience      string         `json:"target_audience"`
	Mode                string         `json:"mode"`
	Agenda              string         `json:"agenda"`
	MediaLink           string         `json:"media_link"`
	Winners             []model.Winner `json:"winners"`
	Highlights          []string       `json:"highlights"`
}

// ResolvedReport is what the rendering collaborator receives.
type ResolvedReport struct {
	ID               string        `json:"id"`
	TemplateID       string        `json:"template_id"`
	CreatedAt        string        `json:"created_at"`
	Facts            ResolvedFacts `json:"facts"`
	ExecutiveSummary string        `json:"executive_summary"`
	KeyTakeaways     []string      `json:"key_takeaways"`
	Confidence       int           `json:"confidence"`
	FlaggedClaims    []model.Claim `json:"flagged_claims,omitempty"`
}

// Resolve projects a report into its renderable view.
func Resolve(r model.Report) ResolvedReport {
	takeaways := r.Narrative.KeyTakeaways
	if len(takeaways) == 0 {
		takeaways = []string{placeholderTakeaway}
	}

	return ResolvedReport{
		ID:               r.ID,
		TemplateID:       r.TemplateID,
		CreatedAt:        r.CreatedAt.Format("2006-01-02 15:04 MST"),
		Facts:            resolveFacts(r.Facts),
		ExecutiveSummary: orPlaceholder(r.Narrative.ExecutiveSummary),
		KeyTakeaways:     takeaways,
		Confidence:       r.Verdict.Confidence,
		FlaggedClaims:    r.Verdict.Flagged,
	}
}

func resolveFacts(f model.FactRecord) ResolvedFacts {
	return ResolvedFacts{
		EventTitle:          f.EventTitle.OrElse(Placeholder),
		Date:                resolveDate(f.Date),
		Venue:               f.Venue.OrElse(Placeholder),
		SpeakerName:         f.SpeakerName.OrElse(Placeholder),
		AttendanceCount:     resolveCount(f.AttendanceCount),
		Organizer:           f.Organizer.OrElse(Placeholder),
		StudentCoordinators: resolveList(f.StudentCoordinators),
		FacultyCoordinators: resolveList(f.FacultyCoordinators),
		Judges:              resolveList(f.Judges),
		VolunteerCount:      resolveCount(f.VolunteerCount),
		TargetAudience:      f.TargetAudience.OrElse(Placeholder),
		Mode:                f.Mode.OrElse(Placeholder),
		Agenda:              f.Agenda.OrElse(Placeholder),
		MediaLink:           f.MediaLink.OrElse(Placeholder),
		Winners:             f.Winners.Items(),
		Highlights:          resolveList(f.Highlights),
	}
}

func resolveDate(d model.Date) string {
	if v, ok := d.Value(); ok {
		return v
	}
	return Placeholder
}

func resolveCount(c model.Count) string {
	if v, ok := c.Value(); ok {
		return strconv.Itoa(v)
	}
	return Placeholder
}

func resolveList(l model.List) []string {
	items := l.Items()
	if len(items) == 0 {
		return []string{Placeholder}
	}
	return items
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// Validate enforces the null-safety contract at the handoff: no empty
// strings, nil lists or empty list entries may reach the renderer.
func Validate(res ResolvedReport) error {
	fields := map[string]string{
		"event_title":       res.Facts.EventTitle,
		"date":              res.Facts.Date,
		"venue":             res.Facts.Venue,
		"speaker_name":      res.Facts.SpeakerName,
		"attendance_count":  res.Facts.AttendanceCount,
		"organizer":         res.Facts.Organizer,
		"volunteer_count":   res.Facts.VolunteerCount,
		"target_audience":   res.Facts.TargetAudience,
		"mode":              res.Facts.Mode,
		"agenda":            res.Facts.Agenda,
		"media_link":        res.Facts.MediaLink,
		"executive_summary": res.ExecutiveSummary,
	}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("renderable view: field %s is empty", name)
		}
	}
	lists := map[string][]string{
		"student_coordinators": res.Facts.StudentCoordinators,
		"faculty_coordinators": res.Facts.FacultyCoordinators,
		"judges":               res.Facts.Judges,
		"highlights":           res.Facts.Highlights,
		"key_takeaways":        res.KeyTakeaways,
	}
	for name, l := range lists {
		if len(l) == 0 {
			return fmt.Errorf("renderable view: list %s is empty", name)
		}
		for _, item := range l {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("renderable view: list %s contains an empty entry", name)
			}
		}
	}
	return nil
}
