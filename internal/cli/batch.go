package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scribelab/chronicler/internal/pipeline"
	"github.com/scribelab/chronicler/internal/render"
	"github.com/scribelab/chronicler/internal/worker"
)

var (
	batchTemplate    string
	batchConcurrency int
	batchTimeout     time.Duration
	batchOutDir      string
	batchModel       string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file>",
	Short: "Generate reports for many notes files concurrently",
	Long: `Batch reads a list file (one notes file path per line, # for
comments) and runs the full pipeline over each entry. Every entry is its
own session; sessions run concurrently and share only the completion cache.

Entries whose notes leave required fields unresolved are reported and
skipped, since batch mode has nobody to ask.

Example:
  chronicler batch events.txt --template seminar --concurrency 4 --out reports/`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchTemplate, "template", "t", "workshop", "template to assemble against")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 3, "number of concurrent sessions")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "overall batch timeout")
	batchCmd.Flags().StringVar(&batchOutDir, "out", ".", "directory for report JSON files")
	batchCmd.Flags().StringVar(&batchModel, "model", "", "provider model name (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	reportModel = batchModel
	cfg, store, err := buildConfig()
	if err != nil {
		return err
	}

	tpl, ok := store.Get(batchTemplate)
	if !ok {
		return fmt.Errorf("unknown template %q (available: %s)", batchTemplate, strings.Join(store.IDs(), ", "))
	}

	p, err := pipeline.New(cfg, newLogger())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(batchOutDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	processor := worker.NewBatchProcessor(p, batchConcurrency, pipeline.RunInput{Template: tpl})
	results, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		name := filepath.Base(r.Path)
		switch {
		case r.Error != nil:
			failed++
			fmt.Printf("✗ %s: %v\n", name, r.Error)
		case r.Run.NeedsInput():
			failed++
			fields := make([]string, len(r.Run.Gaps))
			for i, g := range r.Run.Gaps {
				fields[i] = g.Field
			}
			fmt.Printf("✗ %s: unresolved required fields: %s\n", name, strings.Join(fields, ", "))
		default:
			report := *r.Run.Report
			outPath := filepath.Join(batchOutDir, strings.TrimSuffix(name, filepath.Ext(name))+".report.json")
			if err := render.WriteJSON(report, outPath); err != nil {
				failed++
				fmt.Printf("✗ %s: %v\n", name, err)
				continue
			}
			fmt.Printf("✓ %s: confidence %d/100 → %s\n", name, report.Verdict.Confidence, outPath)
		}
	}

	fmt.Printf("\n%d/%d entries succeeded\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d entries failed", failed)
	}
	return nil
}
