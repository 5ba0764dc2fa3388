// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline contains the orchestrator at the heart of the research
// pipeline: a cyclic finite-state machine that sequences the enabled agent
// stages, threads one mutable State through them, scores the draft after
// every pass, and decides whether to loop or terminate.
//
// The machine's states are the enabled stages plus a scoring state. The
// cycle (entry stage → … → scoring → entry stage) is unconditional except
// for the scoring state's binary continue/stop branch; transitions are a
// lookup table built once at construction, so an Orchestrator is stateless
// after New and safe to share across concurrent runs.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-pipeline/internal/agent"
	"github.com/pdiddy/research-pipeline/internal/llm"
	"github.com/pdiddy/research-pipeline/internal/retrieval"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// node is one state in the workflow machine: a stage name or scoreNode.
type node string

// scoreNode is the scoring state, entered once per pass after the last
// enabled stage.
const scoreNode node = "score"

// PassSnapshot is the per-pass checkpoint record.
type PassSnapshot struct {
	Iteration        int
	Content          string
	ConvergenceScore float64
	Converged        bool
	Scores           map[string]float64
}

// Checkpointer persists run progress. Checkpoint failures are non-fatal:
// the orchestrator logs a warning and carries on.
type Checkpointer interface {
	SavePass(ctx context.Context, runID string, snap PassSnapshot) error
	SaveReport(ctx context.Context, runID string, report *types.RunReport) error
}

// Orchestrator wires the enabled stages into a workflow and drives runs.
type Orchestrator struct {
	cfg      types.PipelineConfig
	scorer   Scorer
	progress io.Writer

	checkpointer Checkpointer

	threshold      float64
	maxIterations  int
	metricNames    []string
	defaultOverall float64

	// entry and next form the transition table, computed once.
	entry node
	next  map[node]node
	order []agent.Name

	researcher  *agent.ResearcherStage
	factChecker *agent.FactCheckerStage
	reviewer    *agent.ReviewerStage
	editor      *agent.EditorStage
}

// Option customizes an Orchestrator at construction.
type Option func(*Orchestrator)

// WithProgress directs per-stage progress lines to w.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) { o.progress = w }
}

// WithCheckpointer enables per-pass snapshots and report persistence.
func WithCheckpointer(c Checkpointer) Option {
	return func(o *Orchestrator) { o.checkpointer = c }
}

// WithSearcher gives the researcher stage a literature search capability.
func WithSearcher(s retrieval.Searcher) Option {
	return func(o *Orchestrator) { o.researcher.Searcher = s }
}

const (
	defaultMaxIterations = 5
	defaultThreshold     = 0.85
	defaultOverallScore  = 0.7
)

// New validates the configuration, builds the stage set and the transition
// table, and returns an orchestrator ready for any number of runs.
func New(cfg types.PipelineConfig, client llm.Client, scorer Scorer, opts ...Option) (*Orchestrator, error) {
	enabled, err := enabledSet(cfg.EnabledAgents)
	if err != nil {
		return nil, err
	}
	if !enabled[agent.Researcher] && !enabled[agent.Editor] {
		return nil, ErrNoContentStage
	}

	// Zero means unset. A literal 0 threshold is expressible as
	// MaxIterations 1, so no IsSet distinction is carried.
	threshold := cfg.ConvergenceThreshold
	if threshold == 0 {
		threshold = defaultThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, cfg.ConvergenceThreshold)
	}

	maxIterations := cfg.MaxIterations
	if maxIterations == 0 {
		maxIterations = defaultMaxIterations
	}
	if maxIterations < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterations, cfg.MaxIterations)
	}

	defaultOverall := cfg.Evaluation.DefaultOverallScore
	if defaultOverall == 0 {
		defaultOverall = defaultOverallScore
	}

	o := &Orchestrator{
		cfg:            cfg,
		scorer:         scorer,
		progress:       io.Discard,
		threshold:      threshold,
		maxIterations:  maxIterations,
		metricNames:    cfg.Evaluation.Metrics,
		defaultOverall: defaultOverall,

		researcher:  &agent.ResearcherStage{Client: client, Options: cfg.Agents[string(agent.Researcher)]},
		factChecker: &agent.FactCheckerStage{Client: client, Options: cfg.Agents[string(agent.FactChecker)]},
		reviewer:    &agent.ReviewerStage{Client: client, Options: cfg.Agents[string(agent.Reviewer)]},
		editor:      &agent.EditorStage{Client: client, Options: cfg.Agents[string(agent.Editor)]},
	}

	// Execution order within a pass is fixed; disabled stages are skipped.
	for _, name := range agent.All {
		if enabled[name] {
			o.order = append(o.order, name)
		}
	}

	o.entry = node(o.order[0])
	o.next = make(map[node]node, len(o.order)+1)
	for i, name := range o.order {
		if i+1 < len(o.order) {
			o.next[node(name)] = node(o.order[i+1])
		} else {
			o.next[node(name)] = scoreNode
		}
	}
	o.next[scoreNode] = o.entry

	for _, opt := range opts {
		opt(o)
	}
	o.researcher.Warnings = o.progress

	return o, nil
}

// enabledSet validates and normalizes the configured agent names. A nil
// list means all four stages; an explicitly empty list is an error.
func enabledSet(names []string) (map[agent.Name]bool, error) {
	enabled := make(map[agent.Name]bool, len(agent.All))
	if names == nil {
		for _, name := range agent.All {
			enabled[name] = true
		}
		return enabled, nil
	}
	if len(names) == 0 {
		return nil, ErrNoStages
	}
	for _, raw := range names {
		name := agent.Name(raw)
		if !agent.Valid(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, raw)
		}
		enabled[name] = true
	}
	return enabled, nil
}

// Run drives one pipeline run to termination and returns the Run Report.
// The context is checked at every stage boundary and before the scoring
// step; an in-flight generation call completes or fails cleanly before the
// run is abandoned, so cancellation never commits a partial mutation.
//
// runID identifies the run in the checkpoint store and may be shared by
// independent concurrent runs only if checkpointing is disabled.
func (o *Orchestrator) Run(ctx context.Context, topic, requirements, runID string) (*types.RunReport, error) {
	if topic == "" {
		return nil, fmt.Errorf("pipeline: topic is required")
	}

	state := newState(topic, requirements, o.maxIterations)

	current := o.entry
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if current == scoreNode {
			o.scorePass(ctx, state)
			fmt.Fprintf(o.progress, "pass %d scored %.2f (converged=%v)\n",
				state.Iteration, state.ConvergenceScore, state.Converged)
			o.checkpointPass(ctx, runID, state)
			if state.Converged {
				break
			}
			current = o.next[current]
			continue
		}

		stage := agent.Name(current)
		fmt.Fprintf(o.progress, "pass %d: running %s\n", state.Iteration+1, stage)
		if err := o.runStage(ctx, stage, state); err != nil {
			return nil, &StageError{Stage: string(stage), Err: err}
		}
		current = o.next[current]
	}

	report := state.report(runID)
	if o.checkpointer != nil {
		if err := o.checkpointer.SaveReport(ctx, runID, report); err != nil {
			fmt.Fprintf(o.progress, "warning: saving report checkpoint: %v\n", err)
		}
	}
	return report, nil
}

// runStage executes one stage and applies its result to state. The stage
// computes into a Result first; state is mutated only after the generation
// call has succeeded, so a failure leaves state exactly as it was.
func (o *Orchestrator) runStage(ctx context.Context, stage agent.Name, s *State) error {
	in := agent.Input{
		Topic:        s.Topic,
		Requirements: s.Requirements,
		Content:      s.CurrentContent,
		Context:      s.contextMap(stage),
		PriorOutput:  s.StageOutputs[stage].Output,
		Iteration:    s.Iteration,
	}

	var (
		res agent.Result
		err error
	)
	switch stage {
	case agent.Researcher:
		res, err = o.researcher.Run(ctx, in)
	case agent.FactChecker:
		res, err = o.factChecker.Run(ctx, in, s.Sources)
	case agent.Reviewer:
		res, err = o.reviewer.Run(ctx, in)
	case agent.Editor:
		feedback := s.StageOutputs[agent.Reviewer].Output
		res, err = o.editor.Run(ctx, in, feedback)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAgent, stage)
	}
	if err != nil {
		return err
	}

	o.applyResult(stage, res, s)
	return nil
}

// applyResult commits one stage's result to state: the audit entry, the
// stage output record, and the stage-specific fields.
func (o *Orchestrator) applyResult(stage agent.Name, res agent.Result, s *State) {
	s.Interactions = append(s.Interactions, types.AgentInteraction{
		Agent:     string(stage),
		Iteration: s.Iteration,
		Summary:   res.Summary(),
	})
	s.StageOutputs[stage] = res

	if agent.ProducesContent(stage) {
		s.PreviousContent = s.CurrentContent
		s.CurrentContent = res.Output
	}

	switch stage {
	case agent.Researcher:
		s.Sources = res.Sources
	case agent.FactChecker:
		s.Scores["factual_accuracy"] = res.FactualAccuracy
		s.Citations = append(s.Citations, extractCitations(res)...)
	case agent.Reviewer:
		s.Scores["review_score"] = res.OverallScore
		s.FeedbackHistory = append(s.FeedbackHistory, res.Output)
	}
}

// extractCitations collects the citations a fact-check validated: the
// verified claims that reference a source.
func extractCitations(res agent.Result) []string {
	var citations []string
	for _, claim := range res.VerifiedClaims {
		if containsCitation(claim) {
			citations = append(citations, claim)
		}
	}
	return citations
}

// citationMarkers flag claim lines that carry a source reference.
var citationMarkers = []string{"source:", "reference:", "arxiv:"}

// containsCitation reports whether a claim line carries a source marker.
func containsCitation(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range citationMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// checkpointPass saves a per-pass snapshot when checkpointing is enabled.
func (o *Orchestrator) checkpointPass(ctx context.Context, runID string, s *State) {
	if o.checkpointer == nil {
		return
	}
	scores := make(map[string]float64, len(s.Scores))
	for k, v := range s.Scores {
		scores[k] = v
	}
	snap := PassSnapshot{
		Iteration:        s.Iteration,
		Content:          s.CurrentContent,
		ConvergenceScore: s.ConvergenceScore,
		Converged:        s.Converged,
		Scores:           scores,
	}
	if err := o.checkpointer.SavePass(ctx, runID, snap); err != nil {
		fmt.Fprintf(o.progress, "warning: saving pass checkpoint: %v\n", err)
	}
}
