// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
)

// Scorer is the scoring port consumed after every pass. Implementations
// must behave as pure functions of their inputs: the orchestrator treats
// any returned metric as authoritative. The returned map should carry an
// "overall_score" key; when it does not, the orchestrator combines the
// configured sub-metrics with the configured weights.
type Scorer interface {
	Score(ctx context.Context, content, previousContent, topic string) (map[string]float64, error)
}

// overallKey is the metric the continue/stop decision reads.
const overallKey = "overall_score"

// unweightedContribution is the weight of a metric that has configured
// weights alongside it but none of its own.
const unweightedContribution = 0.33

// defaultMetrics is the sub-metric set combined when none is configured.
var defaultMetrics = []string{"factual_accuracy", "logical_coherence", "linguistic_clarity"}

// scorePass runs the scoring step: it increments the pass counter, merges
// the scorer's metrics into state, recomputes the convergence score, and
// decides whether the run has converged. A scoring failure is non-fatal;
// the last known scores are kept and the iteration cap is still enforced,
// so a persistently failing scorer cannot loop forever.
func (o *Orchestrator) scorePass(ctx context.Context, s *State) {
	s.Iteration++

	metrics, err := o.scorer.Score(ctx, s.CurrentContent, s.PreviousContent, s.Topic)
	if err != nil {
		fmt.Fprintf(o.progress, "warning: scoring failed on pass %d, keeping previous scores: %v\n", s.Iteration, err)
	} else {
		for k, v := range metrics {
			s.Scores[k] = v
		}
		s.ConvergenceScore = o.overallScore(metrics)
	}

	if s.ConvergenceScore >= o.threshold || s.Iteration >= s.MaxIterations {
		s.Converged = true
	}
}

// overallScore resolves the convergence score from a scorer's metric map:
// the scorer's own overall_score when present, otherwise the weighted
// combination of configured sub-metrics, otherwise the configured default.
func (o *Orchestrator) overallScore(metrics map[string]float64) float64 {
	if v, ok := metrics[overallKey]; ok {
		return v
	}
	if v, ok := combineScores(metrics, o.metricNames, o.cfg.Evaluation.Weights); ok {
		return v
	}
	return o.defaultOverall
}

// combineScores computes the weighted overall score across the named
// sub-metrics. With no weights configured at all, metrics weigh equally;
// with weights configured, an unlisted metric contributes 0.33. Returns
// false when none of the named metrics is present.
func combineScores(metrics map[string]float64, names []string, weights map[string]float64) (float64, bool) {
	if len(names) == 0 {
		names = defaultMetrics
	}

	equalWeight := 1.0 / float64(len(names))

	var sum float64
	found := false
	for _, name := range names {
		v, ok := metrics[name]
		if !ok {
			continue
		}
		found = true

		w := equalWeight
		if len(weights) > 0 {
			w = unweightedContribution
			if cw, ok := weights[name]; ok {
				w = cw
			}
		}
		sum += v * w
	}
	return sum, found
}
