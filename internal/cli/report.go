package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scribelab/chronicler/internal/model"
	"github.com/scribelab/chronicler/internal/pipeline"
	"github.com/scribelab/chronicler/internal/render"
	"github.com/scribelab/chronicler/internal/templates"
)

var (
	reportTemplate    string
	reportTranscript  string
	reportSets        []string
	reportResolutions string
	reportOutJSON     string
	reportOutMD       string
	reportTimeout     time.Duration
	reportModel       string
	reportNoCache     bool
	reportNoFooter    bool
	reportMinConf     int
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <notes-file>",
	Short: "Generate a verified event report from a notes file",
	Long: `Report runs the full pipeline over one notes file:
extraction, gap resolution, narrative generation, verification, assembly.

If template-required facts are missing from the notes, the command lists
them with the suggested input kind; supply values with --set or a
resolutions YAML file and run again.

Example:
  chronicler report notes.txt --template workshop
  chronicler report notes.txt --template workshop --set venue="Main Auditorium"
  chronicler report notes.txt --transcript talk.txt --json report.json --md report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportTemplate, "template", "t", "workshop", "template to assemble against")
	reportCmd.Flags().StringVar(&reportTranscript, "transcript", "", "optional audio transcript file")
	reportCmd.Flags().StringArrayVar(&reportSets, "set", nil, "resolve a gap: field=value (repeatable)")
	reportCmd.Flags().StringVar(&reportResolutions, "resolutions", "", "YAML file mapping field names to values")
	reportCmd.Flags().StringVar(&reportOutJSON, "json", "report.json", "output JSON path")
	reportCmd.Flags().StringVar(&reportOutMD, "md", "", "output Markdown path (optional)")
	reportCmd.Flags().DurationVar(&reportTimeout, "timeout", 5*time.Minute, "overall pipeline timeout")
	reportCmd.Flags().StringVar(&reportModel, "model", "", "provider model name (default from config)")
	reportCmd.Flags().BoolVar(&reportNoCache, "no-cache", false, "disable the completion cache")
	reportCmd.Flags().BoolVar(&reportNoFooter, "no-footer", false, "disable footer in Markdown output")
	reportCmd.Flags().IntVar(&reportMinConf, "min-confidence", 0, "fail when the verdict's confidence is below this (0 disables)")
}

func runReport(cmd *cobra.Command, args []string) error {
	notes, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read notes: %w", err)
	}

	transcript := ""
	if reportTranscript != "" {
		data, err := os.ReadFile(reportTranscript)
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}
		transcript = string(data)
	}

	cfg, store, err := buildConfig()
	if err != nil {
		return err
	}

	tpl, ok := store.Get(reportTemplate)
	if !ok {
		return fmt.Errorf("unknown template %q (available: %s)", reportTemplate, strings.Join(store.IDs(), ", "))
	}

	resolutions, err := collectResolutions()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	p, err := pipeline.New(cfg, newLogger())
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, pipeline.RunInput{
		Notes:       string(notes),
		Transcript:  transcript,
		Template:    tpl,
		Resolutions: resolutions,
	})
	if err != nil {
		return err
	}

	if result.NeedsInput() {
		fmt.Println("The notes do not cover every field this template requires.")
		fmt.Println("Provide the missing values with --set field=value and run again:")
		fmt.Println()
		for _, g := range result.Gaps {
			hint := string(g.Modality)
			if len(g.Options) > 0 {
				hint = fmt.Sprintf("choice: %s", strings.Join(g.Options, " | "))
			}
			fmt.Printf("  %-22s (%s)\n", g.Field, hint)
		}
		return fmt.Errorf("%d required field(s) unresolved", len(result.Gaps))
	}

	report := *result.Report

	if reportOutJSON != "" {
		if err := render.WriteJSON(report, reportOutJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", reportOutJSON)
		}
	}
	if reportOutMD != "" {
		if err := render.WriteMarkdown(report, reportOutMD, !reportNoFooter); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", reportOutMD)
		}
	}

	printVerdict(report)

	if reportMinConf > 0 && report.Verdict.Confidence < reportMinConf {
		return fmt.Errorf("confidence %d below required %d", report.Verdict.Confidence, reportMinConf)
	}
	return nil
}

func printVerdict(report model.Report) {
	fmt.Printf("Report %s assembled (template %s)\n", report.ID, report.TemplateID)
	fmt.Printf("Confidence: %d/100 (%d/%d claims grounded)\n",
		report.Verdict.Confidence, report.Verdict.GroundedCount, report.Verdict.TotalCount)
	for _, c := range report.Verdict.Flagged {
		fmt.Printf("  flagged: %q in %s: %s\n", c.Text, c.Origin, c.Reason)
	}
}

// buildConfig layers defaults, config file values and flags, and loads the
// template store.
func buildConfig() (*model.Config, *templates.Store, error) {
	cfg := model.DefaultConfig()
	cfg.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		cfg.Provider.BaseURL = base
	}
	if cfg.Provider.APIKey == "" && cfg.Provider.BaseURL == "" {
		return nil, nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if reportModel != "" {
		cfg.Provider.Model = reportModel
	}
	cfg.Cache.Enabled = !reportNoCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !reportNoFooter
	if cfg.Templates.Dir == "" {
		cfg.Templates.Dir = templatesDir()
	}

	store, warnings := templates.Load(cfg.Templates.Dir)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
	}
	return cfg, store, nil
}

// collectResolutions merges a resolutions file with --set flags; flags win.
func collectResolutions() (map[string]string, error) {
	out := make(map[string]string)
	if reportResolutions != "" {
		data, err := os.ReadFile(reportResolutions)
		if err != nil {
			return nil, fmt.Errorf("read resolutions: %w", err)
		}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse resolutions: %w", err)
		}
	}
	for _, s := range reportSets {
		field, value, found := strings.Cut(s, "=")
		if !found {
			return nil, fmt.Errorf("invalid --set %q (expected field=value)", s)
		}
		out[strings.TrimSpace(field)] = value
	}
	return out, nil
}
