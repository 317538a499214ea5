package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scribelab/chronicler/internal/pipeline"
)

// Runner runs one report pipeline end to end. Satisfied by
// *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, in pipeline.RunInput) (*pipeline.RunResult, error)
}

// ReportJob processes one notes file as its own session.
type ReportJob struct {
	Path   string
	Input  pipeline.RunInput
	Runner Runner
}

// Execute reads the notes file and runs the pipeline over it.
func (j *ReportJob) Execute(ctx context.Context) Result {
	notes, err := os.ReadFile(j.Path)
	if err != nil {
		return &ReportResult{Path: j.Path, Error: fmt.Errorf("read notes: %w", err)}
	}
	in := j.Input
	in.Notes = string(notes)
	res, err := j.Runner.Run(ctx, in)
	return &ReportResult{Path: j.Path, Run: res, Error: err}
}

// ReportResult is the outcome of one batch entry.
type ReportResult struct {
	Path  string
	Run   *pipeline.RunResult
	Error error
}

// GetError returns the job's error, if any.
func (r *ReportResult) GetError() error { return r.Error }

// BatchProcessor runs many notes files concurrently, one session each.
type BatchProcessor struct {
	runner      Runner
	concurrency int
	input       pipeline.RunInput // template and resolutions shared by all entries
}

// NewBatchProcessor creates a batch processor. The input's Notes and
// SessionID are ignored; each job gets its own.
func NewBatchProcessor(runner Runner, concurrency int, input pipeline.RunInput) *BatchProcessor {
	return &BatchProcessor{runner: runner, concurrency: concurrency, input: input}
}

// ProcessPaths runs the pipeline over each notes file concurrently.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ReportResult {
	if len(paths) == 0 {
		return []*ReportResult{}
	}

	pool := NewPoolContext(ctx, b.concurrency)
	pool.Start()

	// Submit from a goroutine and drain concurrently; a batch larger than
	// the queue buffers would otherwise wedge before Wait could run.
	go func() {
		for _, path := range paths {
			in := b.input
			in.SessionID = "" // fresh session per file
			pool.Submit(&ReportJob{Path: path, Input: in, Runner: b.runner})
		}
		pool.Finish()
	}()

	out := make([]*ReportResult, 0, len(paths))
	for r := range pool.Results() {
		out = append(out, r.(*ReportResult))
	}
	return out
}

// ProcessFile reads a list file (one notes path per line, # comments
// allowed) and processes the entries concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*ReportResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read batch list: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads notes file paths from a list file, skipping
// blanks, comments and duplicates. Relative paths resolve against the list
// file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
