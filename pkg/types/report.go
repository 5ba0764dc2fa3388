// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AgentInteraction is one audit-trail entry, appended once per stage
// invocation.
type AgentInteraction struct {
	// Agent is the stage name (researcher, fact_checker, reviewer, editor).
	Agent string `json:"agent" yaml:"agent"`

	// Iteration is the pass counter at the time the stage ran. The counter
	// increments at the scoring step, so stages within pass n record n-1.
	Iteration int `json:"iteration" yaml:"iteration"`

	// Summary is the stage's raw output truncated to 200 runes.
	Summary string `json:"summary" yaml:"summary"`
}

// RunReport is the terminal snapshot of a pipeline run. The field set is
// the stable external contract consumed by the CLI and the checkpoint
// store; renames here are breaking changes.
type RunReport struct {
	// RunID identifies the run in the checkpoint store.
	RunID string `json:"run_id" yaml:"run_id"`

	// Topic is the research topic the run was started with.
	Topic string `json:"topic" yaml:"topic"`

	// Requirements are the optional user requirements, verbatim.
	Requirements string `json:"requirements,omitempty" yaml:"requirements,omitempty"`

	// Document is the final draft.
	Document string `json:"document" yaml:"document"`

	// Sources lists the citations gathered by research and fact-check stages.
	Sources []string `json:"sources" yaml:"sources"`

	// Scores maps metric name to its last value.
	Scores map[string]float64 `json:"scores" yaml:"scores"`

	// Iterations is the number of completed passes.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Converged reports whether the score threshold was met; false here
	// never occurs in a returned report since the iteration cap also sets it.
	Converged bool `json:"converged" yaml:"converged"`

	// AgentInteractions is the full audit trail, in execution order.
	AgentInteractions []AgentInteraction `json:"agent_interactions" yaml:"agent_interactions"`

	// FeedbackHistory holds every reviewer output, in pass order.
	FeedbackHistory []string `json:"feedback_history" yaml:"feedback_history"`
}
