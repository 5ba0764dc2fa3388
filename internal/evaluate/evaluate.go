// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluate provides the default scoring port: keyword and
// structure heuristics over the draft text. The heuristics are crude by
// design; callers that want model-based scoring supply their own Scorer.
package evaluate

import (
	"context"
	"strings"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// Heuristic scores content on indicator heuristics for factual accuracy,
// logical coherence, and linguistic clarity, combining them into an
// overall score with the configured weights. It is a pure function of its
// inputs and is safe for concurrent use.
type Heuristic struct {
	metrics []string
	weights map[string]float64
}

// defaultWeights match the metric set's historical weighting.
var defaultWeights = map[string]float64{
	"factual_accuracy":   0.4,
	"logical_coherence":  0.3,
	"linguistic_clarity": 0.3,
}

var defaultMetrics = []string{"factual_accuracy", "logical_coherence", "linguistic_clarity"}

// unweightedContribution applies to a configured metric with no weight.
const unweightedContribution = 0.33

// NewHeuristic builds a scorer from evaluation configuration, falling back
// to the default metric set and weights.
func NewHeuristic(cfg types.EvaluationConfig) *Heuristic {
	metrics := cfg.Metrics
	if len(metrics) == 0 {
		metrics = defaultMetrics
	}
	weights := cfg.Weights
	if len(weights) == 0 {
		weights = defaultWeights
	}
	return &Heuristic{metrics: metrics, weights: weights}
}

// Score evaluates the draft and returns the metric map, always including
// overall_score and, when previousContent is non-empty, improvement.
func (h *Heuristic) Score(_ context.Context, content, previousContent, _ string) (map[string]float64, error) {
	scores := map[string]float64{
		"factual_accuracy":   factualAccuracy(content),
		"logical_coherence":  coherence(content),
		"linguistic_clarity": clarity(content),
	}

	var overall float64
	for _, metric := range h.metrics {
		w, ok := h.weights[metric]
		if !ok {
			w = unweightedContribution
		}
		v, ok := scores[metric]
		if !ok {
			v = 0.7
		}
		overall += v * w
	}
	scores["overall_score"] = overall

	if previousContent != "" {
		scores["improvement"] = improvement(previousContent, content)
	}

	return scores, nil
}

// countIndicators counts how many of the indicators appear in content,
// case-insensitively.
func countIndicators(content string, indicators []string) int {
	lower := strings.ToLower(content)
	n := 0
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			n++
		}
	}
	return n
}

var (
	evidenceIndicators = []string{
		"according to", "research shows", "studies indicate",
		"source:", "citation", "reference",
	}
	hedgeIndicators = []string{
		"might be", "possibly", "uncertain", "unclear",
	}
	transitionIndicators = []string{
		"however", "therefore", "furthermore", "moreover",
		"in addition", "consequently", "thus", "hence",
	}
	clarityIndicators = []string{
		"in other words", "specifically", "for example", "that is",
	}
)

// factualAccuracy rewards evidence markers and penalizes hedging.
func factualAccuracy(content string) float64 {
	score := 0.7

	switch evidence := countIndicators(content, evidenceIndicators); {
	case evidence > 3:
		score += 0.15
	case evidence > 1:
		score += 0.1
	}

	if countIndicators(content, hedgeIndicators) > 2 {
		score -= 0.1
	}

	return clamp(score)
}

// coherence rewards document structure, length, and transition words.
func coherence(content string) float64 {
	score := 0.6

	if strings.ContainsAny(content, "#*") {
		score += 0.15
	}

	switch words := len(strings.Fields(content)); {
	case words > 200:
		score += 0.1
	case words < 50:
		score -= 0.2
	}

	if countIndicators(content, transitionIndicators) > 2 {
		score += 0.1
	}

	return clamp(score)
}

// clarity penalizes long average sentence length and rewards explanatory
// phrasing.
func clarity(content string) float64 {
	score := 0.7

	sentences := strings.Split(content, ".")
	totalWords := 0
	for _, s := range sentences {
		totalWords += len(strings.Fields(s))
	}
	avgLen := float64(totalWords) / float64(max(len(sentences), 1))

	switch {
	case avgLen > 25:
		score -= 0.15
	case avgLen < 10:
		score += 0.1
	}

	if countIndicators(content, clarityIndicators) > 1 {
		score += 0.1
	}

	return clamp(score)
}

// improvement compares structural richness between versions.
func improvement(previous, current string) float64 {
	prev := structureWeight(previous)
	curr := structureWeight(current)
	if prev == 0 {
		return 1.0
	}
	return clamp((curr - prev) / prev)
}

// structureWeight reduces a draft to a single structural richness number.
func structureWeight(content string) float64 {
	w := float64(len(content))*0.3 + float64(strings.Count(content, "\n"))*10
	if strings.Contains(content, "##") {
		w += 50
	}
	return w
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
