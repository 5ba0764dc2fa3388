// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"math"
	"testing"
)

func TestCombineScores(t *testing.T) {
	tests := []struct {
		name      string
		metrics   map[string]float64
		names     []string
		weights   map[string]float64
		want      float64
		wantFound bool
	}{
		{
			name: "equal weights when none configured",
			metrics: map[string]float64{
				"factual_accuracy":   0.9,
				"logical_coherence":  0.6,
				"linguistic_clarity": 0.3,
			},
			want:      0.6,
			wantFound: true,
		},
		{
			name: "configured weights applied",
			metrics: map[string]float64{
				"factual_accuracy":   1.0,
				"logical_coherence":  0.5,
				"linguistic_clarity": 0.5,
			},
			weights: map[string]float64{
				"factual_accuracy":   0.4,
				"logical_coherence":  0.3,
				"linguistic_clarity": 0.3,
			},
			want:      0.7,
			wantFound: true,
		},
		{
			name: "unlisted metric gets default contribution",
			metrics: map[string]float64{
				"factual_accuracy":  1.0,
				"logical_coherence": 1.0,
			},
			weights: map[string]float64{
				"factual_accuracy": 0.5,
			},
			want:      0.83,
			wantFound: true,
		},
		{
			name:    "custom metric names",
			metrics: map[string]float64{"novelty": 0.8, "rigor": 0.4},
			names:     []string{"novelty", "rigor"},
			want:      0.6,
			wantFound: true,
		},
		{
			name:      "missing metrics skipped",
			metrics:   map[string]float64{"factual_accuracy": 0.9},
			wantFound: true,
			want:      0.3,
		},
		{
			name:      "no named metric present",
			metrics:   map[string]float64{"unrelated": 0.9},
			wantFound: false,
		},
		{
			name:      "empty metrics",
			metrics:   map[string]float64{},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := combineScores(tt.metrics, tt.names, tt.weights)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if found && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("combineScores() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverallScoreResolution(t *testing.T) {
	orch, err := New(testConfig("researcher"), &scriptedClient{}, overallScorer(1))
	if err != nil {
		t.Fatalf("New() returned %v", err)
	}

	tests := []struct {
		name    string
		metrics map[string]float64
		want    float64
	}{
		{
			name:    "overall_score wins over sub-metrics",
			metrics: map[string]float64{"overall_score": 0.42, "factual_accuracy": 1.0},
			want:    0.42,
		},
		{
			name: "combined sub-metrics",
			metrics: map[string]float64{
				"factual_accuracy":   0.6,
				"logical_coherence":  0.6,
				"linguistic_clarity": 0.6,
			},
			want: 0.6,
		},
		{
			name:    "falls back to configured default",
			metrics: map[string]float64{},
			want:    defaultOverallScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orch.overallScore(tt.metrics)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("overallScore() = %v, want %v", got, tt.want)
			}
		})
	}
}
