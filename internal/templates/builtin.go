package templates

import "github.com/scribelab/chronicler/internal/model"

const defaultOrganizer = "IEEE Student Branch"

func basicGroups() []model.DisplayGroup {
	return []model.DisplayGroup{
		{Title: "Basic Information", Fields: []string{
			model.FieldEventTitle, model.FieldDate, model.FieldVenue, model.FieldMode,
		}},
		{Title: "People", Fields: []string{
			model.FieldSpeakerName, model.FieldOrganizer,
			model.FieldStudentCoordinators, model.FieldFacultyCoordinators,
		}},
		{Title: "Details", Fields: []string{
			model.FieldAttendanceCount, model.FieldTargetAudience,
			model.FieldAgenda, model.FieldMediaLink, model.FieldHighlights,
		}},
	}
}

// Builtin returns the built-in templates for common event types. These are
// always available even when no user templates exist.
func Builtin() []model.TemplateDefinition {
	return []model.TemplateDefinition{
		{
			ID:          "workshop",
			Name:        "Technical Workshop",
			Description: "Hands-on learning session with a speaker or instructor",
			Category:    "Technical",
			Required: []string{
				model.FieldEventTitle, model.FieldDate, model.FieldVenue,
				model.FieldSpeakerName, model.FieldAttendanceCount,
			},
			Defaults: map[string]string{
				model.FieldOrganizer:      defaultOrganizer,
				model.FieldMode:           "Offline",
				model.FieldTargetAudience: "Engineering Students",
				model.FieldAgenda:         "Registration, welcome, session one, break, session two, Q&A, feedback",
			},
			Groups: basicGroups(),
		},
		{
			ID:          "hackathon",
			Name:        "Hackathon",
			Description: "Competitive building event with teams and prizes",
			Category:    "Competition",
			Required: []string{
				model.FieldEventTitle, model.FieldDate, model.FieldVenue,
				model.FieldAttendanceCount,
			},
			Defaults: map[string]string{
				model.FieldOrganizer:      defaultOrganizer,
				model.FieldMode:           "Hybrid",
				model.FieldTargetAudience: "All Engineering Students",
				model.FieldAgenda:         "Inauguration, problem statement, hacking phase, judging, prize distribution",
			},
			Groups: basicGroups(),
		},
		{
			ID:          "seminar",
			Name:        "Guest Seminar",
			Description: "Talk or lecture by an industry or academic expert",
			Category:    "Knowledge",
			Required: []string{
				model.FieldEventTitle, model.FieldDate, model.FieldVenue,
				model.FieldSpeakerName,
			},
			Defaults: map[string]string{
				model.FieldOrganizer:      defaultOrganizer,
				model.FieldMode:           "Offline",
				model.FieldTargetAudience: "Faculty and Students",
				model.FieldAgenda:         "Welcome, introduction, keynote, Q&A, vote of thanks",
			},
			Groups: basicGroups(),
		},
		{
			ID:          "webinar",
			Name:        "Online Webinar",
			Description: "Virtual session delivered online",
			Category:    "Technical",
			Required: []string{
				model.FieldEventTitle, model.FieldDate, model.FieldSpeakerName,
			},
			Defaults: map[string]string{
				model.FieldOrganizer:      defaultOrganizer,
				model.FieldMode:           "Online",
				model.FieldVenue:          "Online",
				model.FieldTargetAudience: "All Members",
				model.FieldAgenda:         "Meeting link, introduction, presentation, live Q&A, closing",
			},
			Groups: basicGroups(),
		},
		{
			ID:          "competition",
			Name:        "Technical Competition",
			Description: "Contest with multiple rounds and winners",
			Category:    "Competition",
			Required: []string{
				model.FieldEventTitle, model.FieldDate, model.FieldVenue,
				model.FieldAttendanceCount,
			},
			Defaults: map[string]string{
				model.FieldOrganizer:      defaultOrganizer,
				model.FieldMode:           "Offline",
				model.FieldTargetAudience: "Engineering Students",
				model.FieldAgenda:         "Registration, round one, round two, finals, results, prize ceremony",
			},
			Groups: basicGroups(),
		},
	}
}
