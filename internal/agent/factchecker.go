// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"

	"github.com/pdiddy/research-pipeline/internal/llm"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// defaultAccuracy is the factual accuracy assumed when the fact-check
// output carries no parseable score. Overridable via the
// "default_accuracy" option.
const defaultAccuracy = 0.8

// FactCheckerStage verifies claims in the current draft. It attaches an
// assessment to the run without replacing content.
type FactCheckerStage struct {
	Client  llm.Client
	Options types.AgentOptions
}

var factCheckerSystem = systemPrompt("Fact-Checker",
	`verify factual claims, validate citations, check for inconsistencies,
and ensure the research content is accurate and well-supported by evidence`)

// Run performs one fact-check invocation. Sources come from the input
// context under the researcher's name.
func (s *FactCheckerStage) Run(ctx context.Context, in Input, sources []string) (Result, error) {
	prompt, err := renderPrompt(factCheckPromptTmpl, struct {
		Content        string
		Sources        []string
		CrossReference bool
	}{in.Content, sources, optBool(s.Options, "cross_reference", true)})
	if err != nil {
		return Result{}, err
	}
	prompt += formatContext(in.Context)

	output, err := s.Client.Complete(ctx, llm.Request{System: factCheckerSystem, Prompt: prompt})
	if err != nil {
		return Result{}, err
	}

	verified, questionable := parseClaims(output)
	accuracy, ok := extractAccuracyScore(output)
	if !ok {
		accuracy = optFloat(s.Options, "default_accuracy", defaultAccuracy)
	}

	return Result{
		Agent:              FactChecker,
		Output:             output,
		VerifiedClaims:     verified,
		QuestionableClaims: questionable,
		FactualAccuracy:    accuracy,
	}, nil
}
