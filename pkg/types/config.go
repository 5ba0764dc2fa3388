// Package types holds the shared configuration and result types for the
// research pipeline. Config structs carry both json and yaml tags so they
// can round-trip through config files and stored reports.
package types

import "time"

// LLMProvider identifies the text-generation backend.
type LLMProvider string

const (
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderOpenAI    LLMProvider = "openai"
	ProviderOllama    LLMProvider = "ollama"
)

// LLMConfig holds settings for the text-generation backend shared by all
// agent stages.
type LLMConfig struct {
	// Provider selects the backend: anthropic, openai, or ollama.
	Provider LLMProvider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (Ollama hosts, proxies).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Temperature is the sampling temperature (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens caps the generated response length (default 2000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRetries is the number of retry attempts for transient API
	// failures (default 3). Authentication failures are never retried.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// AgentOptions is an arbitrary option map passed through unmodified to one
// agent stage (e.g. reviewer "strictness", editor "synthesis_mode").
type AgentOptions map[string]any

// EvaluationConfig holds settings for the scoring step that runs after
// every pass.
type EvaluationConfig struct {
	// Metrics lists the sub-metrics combined into the overall score.
	// Default: factual_accuracy, logical_coherence, linguistic_clarity.
	Metrics []string `json:"metrics" yaml:"metrics"`

	// Weights maps metric name to its weight in the overall score.
	// A metric with no configured weight contributes with weight 0.33;
	// an empty map means equal weighting across enabled metrics.
	Weights map[string]float64 `json:"weights" yaml:"weights"`

	// DefaultOverallScore is used when the scorer returns neither an
	// overall score nor any configured sub-metric (default 0.7).
	DefaultOverallScore float64 `json:"default_overall_score" yaml:"default_overall_score"`
}

// RetrievalConfig holds settings for the researcher's optional source
// retrieval capability.
type RetrievalConfig struct {
	// Enabled turns arXiv source retrieval on for the researcher stage.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxResults is the number of papers fetched per topic (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// UserAgent is the User-Agent header sent with retrieval requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Timeout is the retrieval HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// CheckpointConfig holds settings for the per-run checkpoint store.
type CheckpointConfig struct {
	// Enabled turns per-pass snapshots and report persistence on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding the checkpoint database
	// (default "checkpoints").
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups everything the orchestrator needs at construction.
// It is read once; live updates apply only to the next run.
type PipelineConfig struct {
	// EnabledAgents is the subset of stages to run, in any order; the
	// execution order is fixed (researcher, fact_checker, reviewer,
	// editor). Default: all four.
	EnabledAgents []string `json:"enabled_agents" yaml:"enabled_agents"`

	// MaxIterations caps the number of passes (default 5, minimum 1).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// ConvergenceThreshold is the overall score at which the run stops,
	// inclusive (range [0,1]). The zero value selects the 0.85 default;
	// to stop after the first pass regardless of score, set MaxIterations
	// to 1 instead of a zero threshold.
	ConvergenceThreshold float64 `json:"convergence_threshold" yaml:"convergence_threshold"`

	// LLM configures the text-generation backend.
	LLM LLMConfig `json:"llm" yaml:"llm"`

	// Agents maps agent name to its stage-specific option map.
	Agents map[string]AgentOptions `json:"agents,omitempty" yaml:"agents,omitempty"`

	// Evaluation configures the scoring step.
	Evaluation EvaluationConfig `json:"evaluation" yaml:"evaluation"`

	// Retrieval configures researcher source retrieval.
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`

	// Checkpoint configures run persistence.
	Checkpoint CheckpointConfig `json:"checkpoint" yaml:"checkpoint"`
}
