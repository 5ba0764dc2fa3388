// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-pipeline/internal/checkpoint"
	"github.com/pdiddy/research-pipeline/internal/evaluate"
	"github.com/pdiddy/research-pipeline/internal/llm"
	"github.com/pdiddy/research-pipeline/internal/pipeline"
	"github.com/pdiddy/research-pipeline/internal/report"
	"github.com/pdiddy/research-pipeline/internal/retrieval"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Run the research pipeline on a topic",
	Long: `Run drives the full pipeline: the enabled agents execute in order
(researcher, fact_checker, reviewer, editor), the draft is scored after
every pass, and the loop repeats until the convergence threshold is met
or the iteration cap is reached. The final report is written to stdout
or --output in the requested --format.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("requirements", "", "additional user requirements for the document")
	runCmd.Flags().String("run-id", "", "run identifier for the checkpoint store (default: generated)")
	runCmd.Flags().String("output", "", "output file path (default: stdout)")
	runCmd.Flags().String("format", "text", "report format: json, yaml, text, or html")
	runCmd.Flags().String("agents", "", "enabled agents, comma-separated (default: all four)")
	runCmd.Flags().Int("max-iterations", 0, "maximum number of passes (default 5)")
	runCmd.Flags().Float64("threshold", 0, "convergence threshold in [0,1] (default 0.85)")
	runCmd.Flags().String("provider", "", "generation provider: anthropic, openai, or ollama")
	runCmd.Flags().String("model", "", "model identifier for the generation provider")
	runCmd.Flags().String("checkpoint-dir", "", "directory for the run checkpoint database (default \"checkpoints\")")
	runCmd.Flags().Bool("no-checkpoint", false, "disable run persistence")
	runCmd.Flags().Bool("retrieval", false, "let the researcher search arXiv for sources")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	topic := args[0]

	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(mustString(cmd, "format"))
	if err != nil {
		return err
	}

	client, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithProgress(os.Stderr)}

	if cfg.Checkpoint.Enabled {
		store, err := checkpoint.Open(cfg.Checkpoint)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, pipeline.WithCheckpointer(store))
	}

	if cfg.Retrieval.Enabled {
		opts = append(opts, pipeline.WithSearcher(retrieval.NewArxivSearcher(cfg.Retrieval)))
	}

	orch, err := pipeline.New(cfg, client, evaluate.NewHeuristic(cfg.Evaluation), opts...)
	if err != nil {
		return err
	}

	runID := mustString(cmd, "run-id")
	if runID == "" {
		runID = "run-" + time.Now().UTC().Format("20060102-150405")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	requirements := mustString(cmd, "requirements")
	fmt.Fprintf(os.Stderr, "Starting run %s: %s\n", runID, topic)

	result, err := orch.Run(ctx, topic, requirements, runID)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := mustString(cmd, "output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}

	return report.Render(out, result, format)
}

// pipelineConfig materializes the run configuration: config-file values
// first, then flag overrides, then secrets for missing API keys.
func pipelineConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.PipelineConfig{
		MaxIterations:        viper.GetInt("pipeline.max_iterations"),
		ConvergenceThreshold: viper.GetFloat64("pipeline.convergence_threshold"),
		LLM: types.LLMConfig{
			Provider:    types.LLMProvider(viper.GetString("llm.provider")),
			Model:       viper.GetString("llm.model"),
			APIKey:      viper.GetString("llm.api_key"),
			BaseURL:     viper.GetString("llm.base_url"),
			Temperature: viper.GetFloat64("llm.temperature"),
			MaxTokens:   viper.GetInt("llm.max_tokens"),
			MaxRetries:  viper.GetInt("llm.max_retries"),
			Timeout:     viper.GetDuration("llm.timeout"),
		},
		Evaluation: types.EvaluationConfig{
			Metrics:             viper.GetStringSlice("evaluation.metrics"),
			DefaultOverallScore: viper.GetFloat64("evaluation.default_overall_score"),
		},
		Retrieval: types.RetrievalConfig{
			Enabled:    viper.GetBool("retrieval.enabled"),
			MaxResults: viper.GetInt("retrieval.max_results"),
			UserAgent:  viper.GetString("retrieval.user_agent"),
			Timeout:    viper.GetDuration("retrieval.timeout"),
		},
		Checkpoint: types.CheckpointConfig{
			Enabled: true,
			Dir:     viper.GetString("checkpoint.dir"),
		},
	}

	if viper.IsSet("agents.enabled") {
		cfg.EnabledAgents = viper.GetStringSlice("agents.enabled")
	}
	if weights := viper.GetStringMap("evaluation.weights"); len(weights) > 0 {
		cfg.Evaluation.Weights = make(map[string]float64, len(weights))
		for name := range weights {
			cfg.Evaluation.Weights[name] = viper.GetFloat64("evaluation.weights." + name)
		}
	}
	cfg.Agents = agentOptions()

	// Flag overrides.
	if cmd.Flags().Changed("agents") {
		cfg.EnabledAgents = splitList(mustString(cmd, "agents"))
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.MaxIterations, _ = cmd.Flags().GetInt("max-iterations")
	}
	if cmd.Flags().Changed("threshold") {
		cfg.ConvergenceThreshold, _ = cmd.Flags().GetFloat64("threshold")
	}
	if v := mustString(cmd, "provider"); v != "" {
		cfg.LLM.Provider = types.LLMProvider(v)
	}
	if v := mustString(cmd, "model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := mustString(cmd, "checkpoint-dir"); v != "" {
		cfg.Checkpoint.Dir = v
	}
	if noCP, _ := cmd.Flags().GetBool("no-checkpoint"); noCP {
		cfg.Checkpoint.Enabled = false
	}
	if retrievalFlag, _ := cmd.Flags().GetBool("retrieval"); retrievalFlag {
		cfg.Retrieval.Enabled = true
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = types.ProviderAnthropic
	}

	switch cfg.LLM.Provider {
	case types.ProviderAnthropic:
		cfg.LLM.APIKey = secretDefault("anthropic-api-key", cfg.LLM.APIKey)
	case types.ProviderOpenAI:
		cfg.LLM.APIKey = secretDefault("openai-api-key", cfg.LLM.APIKey)
	}

	return cfg, nil
}

// agentOptions reads the per-agent option maps (agents.researcher,
// agents.reviewer, ...) from the config file, passed through unmodified.
func agentOptions() map[string]types.AgentOptions {
	opts := make(map[string]types.AgentOptions)
	for _, name := range []string{"researcher", "fact_checker", "reviewer", "editor"} {
		if m := viper.GetStringMap("agents." + name); len(m) > 0 {
			opts[name] = types.AgentOptions(m)
		}
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
