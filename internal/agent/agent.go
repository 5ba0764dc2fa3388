// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent implements the four pipeline stages: researcher,
// fact-checker, reviewer, and editor. Each stage builds a role-specific
// prompt, makes one generation call, and post-processes the raw text into
// a structured Result. Post-processing is best-effort: a missing score or
// claim list falls back to a documented default and never fails the stage.
package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// Name identifies a pipeline stage. The set is closed; the orchestrator
// dispatches over it exhaustively.
type Name string

const (
	Researcher  Name = "researcher"
	FactChecker Name = "fact_checker"
	Reviewer    Name = "reviewer"
	Editor      Name = "editor"
)

// All lists every stage in fixed execution order.
var All = []Name{Researcher, FactChecker, Reviewer, Editor}

// Valid reports whether n names a known stage.
func Valid(n Name) bool {
	for _, known := range All {
		if n == known {
			return true
		}
	}
	return false
}

// ProducesContent reports whether the stage overwrites the draft.
func ProducesContent(n Name) bool {
	return n == Researcher || n == Editor
}

// Input is the read-only view a stage receives: the current draft (or the
// topic, for the entry stage), named prior outputs, and run metadata.
type Input struct {
	Topic        string
	Requirements string
	Content      string

	// Context maps a prior stage's name to its last raw output.
	Context map[string]string

	// PriorOutput is this stage's own output from the previous pass,
	// passed back as conversation history on revision passes.
	PriorOutput string

	Iteration int
}

// Result is one stage invocation's structured output. Output is always
// set; the remaining fields are stage-specific.
type Result struct {
	Agent  Name
	Output string

	// Researcher.
	Sources []string

	// Fact-checker.
	VerifiedClaims     []string
	QuestionableClaims []string
	FactualAccuracy    float64

	// Reviewer.
	Scores       map[string]float64
	OverallScore float64

	// Editor.
	ChangesMade      []string
	ImprovementScore float64
}

// formatContext renders named prior outputs for inclusion in a prompt,
// sorted by key for deterministic prompts.
func formatContext(ctx map[string]string) string {
	if len(ctx) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("\n\nAdditional Context:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, ctx[k])
	}
	return b.String()
}

// Option readers. Stage options arrive as arbitrary key→value maps from
// the config file, so numeric values may decode as int or float64.

func optString(opts types.AgentOptions, key, fallback string) string {
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func optBool(opts types.AgentOptions, key string, fallback bool) bool {
	if v, ok := opts[key].(bool); ok {
		return v
	}
	return fallback
}

func optFloat(opts types.AgentOptions, key string, fallback float64) float64 {
	switch v := opts[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

func optInt(opts types.AgentOptions, key string, fallback int) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}
