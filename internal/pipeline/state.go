// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"github.com/pdiddy/research-pipeline/internal/agent"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// State is the mutable record threaded through every stage within one run.
// It is owned exclusively by the orchestrator for the run's duration and
// never shared across concurrent runs; stages within a pass execute
// strictly sequentially, so no locking is needed.
type State struct {
	// Immutable after initialization.
	Topic        string
	Requirements string

	// CurrentContent is the latest draft. After the first
	// content-producing stage runs it is never empty.
	CurrentContent string

	// PreviousContent is the draft before the most recent edit, snapshot
	// immediately before a content-producing stage overwrites
	// CurrentContent. Consumed only by improvement-delta scoring.
	PreviousContent string

	// Iteration counts completed passes. It increments exactly once per
	// pass, at the scoring step, and nowhere else.
	Iteration     int
	MaxIterations int

	// ConvergenceScore and Converged are set only by the scoring step.
	// Converged is monotone: once true the run terminates.
	ConvergenceScore float64
	Converged        bool

	// Scores accumulates metric values; keys are overwritten on
	// collision, the map is never cleared.
	Scores map[string]float64

	// Interactions is the append-only audit trail, one entry per stage
	// invocation.
	Interactions []types.AgentInteraction

	// FeedbackHistory holds one entry per reviewer invocation.
	FeedbackHistory []string

	// Sources and Citations are set/extended by the research and
	// fact-check stages.
	Sources   []string
	Citations []string

	// StageOutputs holds each stage's most recent full result,
	// overwritten every pass and consumed by later stages as context.
	StageOutputs map[agent.Name]agent.Result
}

// newState initializes a run's state with all accumulative fields empty.
func newState(topic, requirements string, maxIterations int) *State {
	return &State{
		Topic:         topic,
		Requirements:  requirements,
		MaxIterations: maxIterations,
		Scores:        make(map[string]float64),
		StageOutputs:  make(map[agent.Name]agent.Result),
	}
}

// contextMap assembles the named prior outputs a stage receives. Only
// stages that have already produced a result this run appear.
func (s *State) contextMap(exclude agent.Name) map[string]string {
	ctx := make(map[string]string)
	for name, res := range s.StageOutputs {
		if name == exclude {
			continue
		}
		ctx[string(name)+"_output"] = res.Summary()
	}
	return ctx
}

// report assembles the terminal Run Report snapshot.
func (s *State) report(runID string) *types.RunReport {
	return &types.RunReport{
		RunID:             runID,
		Topic:             s.Topic,
		Requirements:      s.Requirements,
		Document:          s.CurrentContent,
		Sources:           s.Sources,
		Scores:            s.Scores,
		Iterations:        s.Iteration,
		Converged:         s.Converged,
		AgentInteractions: s.Interactions,
		FeedbackHistory:   s.FeedbackHistory,
	}
}
