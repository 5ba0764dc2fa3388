// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"

	"github.com/pdiddy/research-pipeline/internal/llm"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// EditorStage rewrites the current draft, integrating reviewer feedback.
// It is the second content-producing stage.
type EditorStage struct {
	Client  llm.Client
	Options types.AgentOptions
}

var editorSystem = systemPrompt("Editor-in-Chief",
	`synthesize research content, ensure coherence across sections,
improve clarity and structure, integrate feedback from reviewers,
and produce a polished, publication-ready research document`)

// Run performs one edit invocation. Feedback is the reviewer's last raw
// output, empty when the reviewer is disabled or has not run.
func (s *EditorStage) Run(ctx context.Context, in Input, feedback string) (Result, error) {
	prompt, err := renderPrompt(editPromptTmpl, struct {
		Topic         string
		Content       string
		Feedback      string
		SynthesisMode string
	}{
		Topic:         in.Topic,
		Content:       in.Content,
		Feedback:      feedback,
		SynthesisMode: optString(s.Options, "synthesis_mode", "comprehensive"),
	})
	if err != nil {
		return Result{}, err
	}
	prompt += formatContext(in.Context)

	output, err := s.Client.Complete(ctx, llm.Request{System: editorSystem, Prompt: prompt})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Agent:            Editor,
		Output:           output,
		ChangesMade:      identifyChanges(in.Content, output),
		ImprovementScore: improvementScore(in.Content, output),
	}, nil
}
