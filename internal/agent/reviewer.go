// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"

	"github.com/pdiddy/research-pipeline/internal/llm"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// ReviewerStage critiques the current draft and produces a quality score.
type ReviewerStage struct {
	Client  llm.Client
	Options types.AgentOptions
}

var reviewerSystem = systemPrompt("Peer Reviewer",
	`review research content for methodological rigor, logical coherence,
clarity, and adherence to academic standards, providing constructive
feedback and identifying areas for improvement`)

// Run performs one review invocation.
func (s *ReviewerStage) Run(ctx context.Context, in Input) (Result, error) {
	prompt, err := renderPrompt(reviewPromptTmpl, struct {
		Topic            string
		Content          string
		CheckMethodology bool
		CheckCoherence   bool
		Strictness       float64
	}{
		Topic:            in.Topic,
		Content:          in.Content,
		CheckMethodology: optBool(s.Options, "check_methodology", true),
		CheckCoherence:   optBool(s.Options, "check_coherence", true),
		Strictness:       optFloat(s.Options, "strictness", 0.8),
	})
	if err != nil {
		return Result{}, err
	}
	prompt += formatContext(in.Context)

	output, err := s.Client.Complete(ctx, llm.Request{System: reviewerSystem, Prompt: prompt})
	if err != nil {
		return Result{}, err
	}

	overall, ok := extractOverallScore(output)
	if !ok {
		overall = lengthFallbackScore(output)
	}

	return Result{
		Agent:        Reviewer,
		Output:       output,
		Scores:       map[string]float64{"overall": overall},
		OverallScore: overall,
	}, nil
}

// lengthFallbackScore estimates review quality when no numeric score could
// be parsed: longer, more detailed reviews imply a better draft.
func lengthFallbackScore(review string) float64 {
	switch {
	case len(review) > 500:
		return 0.75
	case len(review) > 200:
		return 0.65
	default:
		return 0.55
	}
}
