package audit

import "github.com/sashabaranov/go-openai/jsonschema"

func nullable(t jsonschema.DataType, desc string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:        t,
		Description: desc,
	}
}

func nullableList(desc string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:        jsonschema.Array,
		Description: desc,
		Items:       &jsonschema.Definition{Type: jsonschema.String},
	}
}

// factSchema is the structured shape requested from the provider for
// extraction. Field descriptions mirror the null-over-guess contract:
// anything not explicitly stated must come back null.
func factSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"event_title":          nullable(jsonschema.String, "Official title of the event, or null"),
			"date":                 nullable(jsonschema.String, "Event date, YYYY-MM-DD if possible, or null"),
			"venue":                nullable(jsonschema.String, "Physical location of the event, or null"),
			"speaker_name":         nullable(jsonschema.String, "Name of the primary speaker or guest, or null"),
			"attendance_count":     nullable(jsonschema.Integer, "Number of attendees, or null"),
			"organizer":            nullable(jsonschema.String, "Organizing body, or null"),
			"student_coordinators": nullableList("Student coordinator names, or null"),
			"faculty_coordinators": nullableList("Faculty coordinator names, or null"),
			"judges":               nullableList("Judge names, or null"),
			"volunteer_count":      nullable(jsonschema.Integer, "Number of volunteers, or null"),
			"target_audience":      nullable(jsonschema.String, "Target audience, or null"),
			"mode":                 nullable(jsonschema.String, "Mode of conduction: Online, Offline or Hybrid, or null"),
			"agenda":               nullable(jsonschema.String, "Short agenda or flow of the event, or null"),
			"media_link":           nullable(jsonschema.String, "Link to photos or registration, or null"),
			"winners": {
				Type:        jsonschema.Array,
				Description: "Competition winners, or null",
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"place":       nullable(jsonschema.String, "Placement, e.g. First Place"),
						"prize_money": nullable(jsonschema.String, "Prize amount if mentioned"),
						"team_name":   nullable(jsonschema.String, "Winning team name"),
						"members":     nullableList("Team member names"),
					},
				},
			},
			"highlights": nullableList("Notable moments or highlights, or null"),
		},
	}
}
