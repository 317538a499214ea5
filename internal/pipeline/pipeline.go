// Package pipeline orchestrates the extract → resolve → generate → verify →
// assemble flow for one report. Stages run strictly in sequence; each
// stage's output is an immutable record the next stage consumes, so a
// failed or abandoned run never leaves shared state half-written.
package pipeline

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/scribelab/chronicler/internal/assemble"
	"github.com/scribelab/chronicler/internal/audit"
	"github.com/scribelab/chronicler/internal/cache"
	"github.com/scribelab/chronicler/internal/critic"
	"github.com/scribelab/chronicler/internal/gaps"
	"github.com/scribelab/chronicler/internal/gateway"
	"github.com/scribelab/chronicler/internal/ghostwrite"
	"github.com/scribelab/chronicler/internal/model"
	"github.com/scribelab/chronicler/internal/session"
)

// Pipeline wires the stages around one shared gateway. Distinct sessions
// may run concurrently; the gateway cache is the only shared mutable state.
type Pipeline struct {
	auditor     *audit.Auditor
	ghostwriter *ghostwrite.Ghostwriter
	verifier    *critic.Critic
	history     *session.History
	cfg         *model.Config
	log         *slog.Logger
}

// New builds a pipeline from explicit configuration.
func New(cfg *model.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewMemoryCache(cfg.Cache.TTL, 0)
	}

	gw, err := gateway.New(cfg.Provider, c, logger)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		auditor:     audit.New(gw, cfg.Stages.ExtractTemperature, logger),
		ghostwriter: ghostwrite.New(gw, cfg.Stages.NarrativeTemperature, logger),
		verifier:    critic.New(gw, cfg.Stages.CriticTemperature, logger),
		history:     session.NewHistory(),
		cfg:         cfg,
		log:         logger,
	}, nil
}

// History exposes the append-only session history.
func (p *Pipeline) History() *session.History { return p.history }

// Extract runs the auditor over raw notes and an optional transcript.
func (p *Pipeline) Extract(ctx context.Context, notes, transcript string) (model.FactRecord, error) {
	facts, err := p.auditor.Extract(ctx, notes, transcript)
	return facts, stageErr(StageExtract, err)
}

// FindGaps lists template-required fields still absent.
func (p *Pipeline) FindGaps(facts model.FactRecord, tpl model.TemplateDefinition) []gaps.Gap {
	return gaps.Find(facts, tpl)
}

// Resolve applies user-supplied values to a fact record.
func (p *Pipeline) Resolve(facts model.FactRecord, values map[string]string) (model.FactRecord, error) {
	resolved, err := gaps.Resolve(facts, values)
	return resolved, stageErr(StageGaps, err)
}

// Generate synthesizes the narrative from resolved facts.
func (p *Pipeline) Generate(ctx context.Context, facts model.FactRecord, notes string) (model.NarrativeRecord, error) {
	narrative, err := p.ghostwriter.Generate(ctx, facts, notes)
	return narrative, stageErr(StageNarrative, err)
}

// Draft assembles facts and narrative into a draft report, applying
// template defaults to fields still absent.
func (p *Pipeline) Draft(facts model.FactRecord, narrative model.NarrativeRecord, tpl model.TemplateDefinition, sessionID string) (model.Report, error) {
	draft, err := assemble.Draft(facts, narrative, tpl, sessionID)
	return draft, stageErr(StageAssemble, err)
}

// Verify runs the critic over a draft report.
func (p *Pipeline) Verify(ctx context.Context, draft model.Report, notes, transcript string) (model.Verdict, error) {
	verdict, err := p.verifier.Verify(ctx, draft, notes, transcript)
	return verdict, stageErr(StageVerify, err)
}

// Finalize attaches the verdict and appends the completed report to the
// session history.
func (p *Pipeline) Finalize(draft model.Report, verdict model.Verdict) model.Report {
	final := assemble.Finalize(draft, verdict)
	p.history.Append(final)
	return final
}

// RunInput is everything a one-shot run needs.
type RunInput struct {
	Notes      string
	Transcript string
	Template   model.TemplateDefinition
	// Resolutions maps field names to user-supplied values for gaps.
	Resolutions map[string]string
	// SessionID groups reports; empty means a fresh session.
	SessionID string
}

// RunResult is the outcome of a one-shot run. When required gaps remain
// unresolved the result carries them instead of a report, so the caller can
// collect input and run again.
type RunResult struct {
	SessionID string
	Facts     model.FactRecord
	Gaps      []gaps.Gap
	Report    *model.Report
}

// NeedsInput reports whether the run stopped awaiting gap resolution.
func (r *RunResult) NeedsInput() bool { return len(r.Gaps) > 0 }

// Run executes the whole pipeline for one report. If template-required
// fields remain absent after applying resolutions and no template default
// covers them, the run stops and returns the gaps.
func (p *Pipeline) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	result := &RunResult{SessionID: sessionID}

	facts, err := p.Extract(ctx, in.Notes, in.Transcript)
	if err != nil {
		return nil, err
	}

	if len(in.Resolutions) > 0 {
		facts, err = p.Resolve(facts, in.Resolutions)
		if err != nil {
			return nil, err
		}
	}
	result.Facts = facts

	// Gaps a template default will fill are not blocking.
	var blocking []gaps.Gap
	for _, g := range p.FindGaps(facts, in.Template) {
		if _, ok := in.Template.Default(g.Field); !ok {
			blocking = append(blocking, g)
		}
	}
	if len(blocking) > 0 {
		result.Gaps = blocking
		return result, nil
	}

	narrative, err := p.Generate(ctx, facts, in.Notes)
	if err != nil {
		return nil, err
	}

	draft, err := p.Draft(facts, narrative, in.Template, sessionID)
	if err != nil {
		return nil, err
	}

	verdict, err := p.Verify(ctx, draft, in.Notes, in.Transcript)
	if err != nil {
		return nil, err
	}

	final := p.Finalize(draft, verdict)
	result.Report = &final
	return result, nil
}
