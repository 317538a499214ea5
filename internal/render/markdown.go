package render

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/scribelab/chronicler/internal/model"
)

// WriteJSON writes the full report record (with explicit nulls for absent
// fields) to a file.
func WriteJSON(report model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteMarkdown renders the resolved view to a Markdown file. This is the
// stand-in for the external template renderer; it only ever sees resolved
// values, validated against the null-safety contract first.
func WriteMarkdown(report model.Report, path string, includeFooter bool) error {
	res := Resolve(report)
	if err := Validate(res); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(Markdown(res, includeFooter)), 0644)
}

// Markdown lays out a resolved report as a Markdown document.
func Markdown(res ResolvedReport, includeFooter bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Event Report: %s\n\n", res.Facts.EventTitle)
	fmt.Fprintf(&b, "**Date:** %s  \n", res.Facts.Date)
	fmt.Fprintf(&b, "**Venue:** %s  \n", res.Facts.Venue)
	fmt.Fprintf(&b, "**Mode:** %s  \n", res.Facts.Mode)
	fmt.Fprintf(&b, "**Organizer:** %s  \n", res.Facts.Organizer)
	fmt.Fprintf(&b, "**Speaker:** %s  \n", res.Facts.SpeakerName)
	fmt.Fprintf(&b, "**Attendance:** %s  \n", res.Facts.AttendanceCount)
	fmt.Fprintf(&b, "**Target audience:** %s  \n\n", res.Facts.TargetAudience)

	b.WriteString("## Executive Summary\n\n")
	b.WriteString(res.ExecutiveSummary)
	b.WriteString("\n\n## Key Takeaways\n\n")
	for _, t := range res.KeyTakeaways {
		fmt.Fprintf(&b, "- %s\n", t)
	}

	b.WriteString("\n## People\n\n")
	fmt.Fprintf(&b, "- Student coordinators: %s\n", strings.Join(res.Facts.StudentCoordinators, ", "))
	fmt.Fprintf(&b, "- Faculty coordinators: %s\n", strings.Join(res.Facts.FacultyCoordinators, ", "))
	fmt.Fprintf(&b, "- Judges: %s\n", strings.Join(res.Facts.Judges, ", "))
	fmt.Fprintf(&b, "- Volunteers: %s\n", res.Facts.VolunteerCount)

	if len(res.Facts.Winners) > 0 {
		b.WriteString("\n## Winners\n\n")
		for _, w := range res.Facts.Winners {
			line := w.TeamName
			if line == "" {
				line = strings.Join(w.Members, ", ")
			}
			if w.Place != "" {
				line = fmt.Sprintf("%s: %s", w.Place, line)
			}
			if w.PrizeMoney != "" {
				line = fmt.Sprintf("%s (%s)", line, w.PrizeMoney)
			}
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	b.WriteString("\n## Verification\n\n")
	fmt.Fprintf(&b, "Confidence: %d/100\n", res.Confidence)
	if len(res.FlaggedClaims) > 0 {
		b.WriteString("\nFlagged claims:\n\n")
		for _, c := range res.FlaggedClaims {
			fmt.Fprintf(&b, "- %q (%s, in %s): %s\n", c.Text, c.Kind, c.Origin, c.Reason)
		}
	}

	fmt.Fprintf(&b, "\n**Agenda:** %s\n", res.Facts.Agenda)
	fmt.Fprintf(&b, "**Media:** %s\n", res.Facts.MediaLink)

	if includeFooter {
		fmt.Fprintf(&b, "\n---\nGenerated by chronicler · report %s · template %s · %s\n",
			res.ID, res.TemplateID, res.CreatedAt)
	}
	return b.String()
}
