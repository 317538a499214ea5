package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names used across extraction, gap resolution and templates.
const (
	FieldEventTitle          = "event_title"
	FieldDate                = "date"
	FieldVenue               = "venue"
	FieldSpeakerName         = "speaker_name"
	FieldAttendanceCount     = "attendance_count"
	FieldOrganizer           = "organizer"
	FieldStudentCoordinators = "student_coordinators"
	FieldFacultyCoordinators = "faculty_coordinators"
	FieldJudges              = "judges"
	FieldVolunteerCount      = "volunteer_count"
	FieldTargetAudience      = "target_audience"
	FieldMode                = "mode"
	FieldAgenda              = "agenda"
	FieldMediaLink           = "media_link"
	FieldWinners             = "winners"
	FieldHighlights          = "highlights"
)

// ModeChoices are the accepted values for the mode field.
var ModeChoices = []string{"Offline", "Online", "Hybrid"}

// OrderedFields returns every fact field in canonical display order.
func OrderedFields() []string {
	return []string{
		FieldEventTitle,
		FieldDate,
		FieldVenue,
		FieldMode,
		FieldSpeakerName,
		FieldAttendanceCount,
		FieldOrganizer,
		FieldTargetAudience,
		FieldStudentCoordinators,
		FieldFacultyCoordinators,
		FieldJudges,
		FieldVolunteerCount,
		FieldAgenda,
		FieldMediaLink,
		FieldWinners,
		FieldHighlights,
	}
}

// FactRecord holds every extracted event fact. Each field is three-valued;
// absence is a first-class state and is never stood in for by a sentinel
// string. Treat values as frozen once handed to the narrative stage: callers
// that need to change a record work on a Clone.
type FactRecord struct {
	EventTitle          Text    `json:"event_title"`
	Date                Date    `json:"date"`
	Venue               Text    `json:"venue"`
	SpeakerName         Text    `json:"speaker_name"`
	AttendanceCount     Count   `json:"attendance_count"`
	Organizer           Text    `json:"organizer"`
	StudentCoordinators List    `json:"student_coordinators"`
	FacultyCoordinators List    `json:"faculty_coordinators"`
	Judges              List    `json:"judges"`
	VolunteerCount      Count   `json:"volunteer_count"`
	TargetAudience      Text    `json:"target_audience"`
	Mode                Text    `json:"mode"`
	Agenda              Text    `json:"agenda"`
	MediaLink           Text    `json:"media_link"`
	Winners             Winners `json:"winners"`
	Highlights          List    `json:"highlights"`
}

// Clone returns an independent copy of the record.
func (r FactRecord) Clone() FactRecord {
	out := r
	out.StudentCoordinators = cloneList(r.StudentCoordinators)
	out.FacultyCoordinators = cloneList(r.FacultyCoordinators)
	out.Judges = cloneList(r.Judges)
	out.Highlights = cloneList(r.Highlights)
	out.Winners = cloneWinners(r.Winners)
	return out
}

func cloneList(l List) List {
	switch l.State() {
	case StatePresent:
		return ListOf(l.Items())
	case StateEmpty:
		return ListOf(nil)
	default:
		return AbsentList()
	}
}

func cloneWinners(w Winners) Winners {
	switch w.State() {
	case StatePresent:
		return WinnersOf(w.Items())
	case StateEmpty:
		return WinnersOf(nil)
	default:
		return AbsentWinners()
	}
}

// IsMissing reports whether the named field is not present.
func (r FactRecord) IsMissing(field string) bool {
	switch field {
	case FieldEventTitle:
		return r.EventTitle.Missing()
	case FieldDate:
		return r.Date.Missing()
	case FieldVenue:
		return r.Venue.Missing()
	case FieldSpeakerName:
		return r.SpeakerName.Missing()
	case FieldAttendanceCount:
		return r.AttendanceCount.Missing()
	case FieldOrganizer:
		return r.Organizer.Missing()
	case FieldStudentCoordinators:
		return r.StudentCoordinators.Missing()
	case FieldFacultyCoordinators:
		return r.FacultyCoordinators.Missing()
	case FieldJudges:
		return r.Judges.Missing()
	case FieldVolunteerCount:
		return r.VolunteerCount.Missing()
	case FieldTargetAudience:
		return r.TargetAudience.Missing()
	case FieldMode:
		return r.Mode.Missing()
	case FieldAgenda:
		return r.Agenda.Missing()
	case FieldMediaLink:
		return r.MediaLink.Missing()
	case FieldWinners:
		return r.Winners.Missing()
	case FieldHighlights:
		return r.Highlights.Missing()
	default:
		return true
	}
}

// SetString assigns a user-supplied string value to the named field,
// coercing it to the field's type. User input is trusted ground truth, so
// there is no grounding check here, but types are still enforced.
func (r *FactRecord) SetString(field, value string) error {
	switch field {
	case FieldEventTitle:
		r.EventTitle = TextOf(value)
	case FieldDate:
		iso, err := NormalizeDate(value)
		if err != nil {
			return err
		}
		r.Date = DateOf(iso)
	case FieldVenue:
		r.Venue = TextOf(value)
	case FieldSpeakerName:
		r.SpeakerName = TextOf(value)
	case FieldAttendanceCount:
		n, err := parseCount(field, value)
		if err != nil {
			return err
		}
		r.AttendanceCount = CountOf(n)
	case FieldOrganizer:
		r.Organizer = TextOf(value)
	case FieldStudentCoordinators:
		r.StudentCoordinators = ListOf(splitCSV(value))
	case FieldFacultyCoordinators:
		r.FacultyCoordinators = ListOf(splitCSV(value))
	case FieldJudges:
		r.Judges = ListOf(splitCSV(value))
	case FieldVolunteerCount:
		n, err := parseCount(field, value)
		if err != nil {
			return err
		}
		r.VolunteerCount = CountOf(n)
	case FieldTargetAudience:
		r.TargetAudience = TextOf(value)
	case FieldMode:
		r.Mode = TextOf(value)
	case FieldAgenda:
		r.Agenda = TextOf(value)
	case FieldMediaLink:
		r.MediaLink = TextOf(value)
	case FieldHighlights:
		r.Highlights = ListOf(splitCSV(value))
	case FieldWinners:
		return fmt.Errorf("field %q cannot be set from a plain string", field)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// PresentCount returns how many fields carry a present value.
func (r FactRecord) PresentCount() int {
	n := 0
	for _, f := range OrderedFields() {
		if !r.IsMissing(f) {
			n++
		}
	}
	return n
}

// PresentMap returns only the present fields as plain values, keyed by field
// name. This is what the narrative stage sees: absent fields are excluded
// entirely so they cannot leak into prose.
func (r FactRecord) PresentMap() map[string]any {
	out := make(map[string]any)
	if v, ok := r.EventTitle.Value(); ok {
		out[FieldEventTitle] = v
	}
	if v, ok := r.Date.Value(); ok {
		out[FieldDate] = v
	}
	if v, ok := r.Venue.Value(); ok {
		out[FieldVenue] = v
	}
	if v, ok := r.SpeakerName.Value(); ok {
		out[FieldSpeakerName] = v
	}
	if v, ok := r.AttendanceCount.Value(); ok {
		out[FieldAttendanceCount] = v
	}
	if v, ok := r.Organizer.Value(); ok {
		out[FieldOrganizer] = v
	}
	if r.StudentCoordinators.Present() {
		out[FieldStudentCoordinators] = r.StudentCoordinators.Items()
	}
	if r.FacultyCoordinators.Present() {
		out[FieldFacultyCoordinators] = r.FacultyCoordinators.Items()
	}
	if r.Judges.Present() {
		out[FieldJudges] = r.Judges.Items()
	}
	if v, ok := r.VolunteerCount.Value(); ok {
		out[FieldVolunteerCount] = v
	}
	if v, ok := r.TargetAudience.Value(); ok {
		out[FieldTargetAudience] = v
	}
	if v, ok := r.Mode.Value(); ok {
		out[FieldMode] = v
	}
	if v, ok := r.Agenda.Value(); ok {
		out[FieldAgenda] = v
	}
	if v, ok := r.MediaLink.Value(); ok {
		out[FieldMediaLink] = v
	}
	if r.Winners.Present() {
		out[FieldWinners] = r.Winners.Items()
	}
	if r.Highlights.Present() {
		out[FieldHighlights] = r.Highlights.Items()
	}
	return out
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseCount(field, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("field %q: %q is not a whole number", field, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("field %q: count must not be negative", field)
	}
	return n, nil
}
