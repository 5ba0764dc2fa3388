// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/research-pipeline/internal/llm"
	"github.com/pdiddy/research-pipeline/internal/retrieval"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// ResearcherStage generates the initial draft from the topic and gathers
// sources. When a Searcher is configured it queries the literature first
// and feeds hits into the prompt; search failures degrade to prompt-only
// research with a warning.
type ResearcherStage struct {
	Client   llm.Client
	Searcher retrieval.Searcher
	Options  types.AgentOptions

	// Warnings receives degradation notices. Defaults to io.Discard.
	Warnings io.Writer
}

var researcherSystem = systemPrompt("Research Specialist",
	`conduct research on given topics, gather information from multiple sources,
synthesize findings, and generate well-structured research content with proper citations`)

// Run performs one researcher invocation.
func (s *ResearcherStage) Run(ctx context.Context, in Input) (Result, error) {
	var retrieved []string
	if s.Searcher != nil {
		// A non-positive count defers to the searcher's configured default.
		topK := optInt(s.Options, "retrieval_top_k", 0)
		hits, err := s.Searcher.Search(ctx, in.Topic, topK)
		if err != nil {
			fmt.Fprintf(s.warnings(), "warning: source retrieval failed, continuing without: %v\n", err)
		} else {
			retrieved = hits
		}
	}

	prompt, err := renderPrompt(researchPromptTmpl, struct {
		Topic            string
		Requirements     string
		RetrievedSources []string
	}{in.Topic, in.Requirements, retrieved})
	if err != nil {
		return Result{}, err
	}
	prompt += formatContext(in.Context)

	req := llm.Request{System: researcherSystem, Prompt: prompt}
	if in.PriorOutput != "" {
		req.History = []llm.Message{{Role: "assistant", Content: in.PriorOutput}}
	}

	output, err := s.Client.Complete(ctx, req)
	if err != nil {
		return Result{}, err
	}

	sources := extractSources(output)
	sources = append(sources, retrieved...)
	if len(sources) == 0 {
		sources = []string{"[Sources to be added]"}
	}

	return Result{Agent: Researcher, Output: output, Sources: sources}, nil
}

func (s *ResearcherStage) warnings() io.Writer {
	if s.Warnings == nil {
		return io.Discard
	}
	return s.Warnings
}
