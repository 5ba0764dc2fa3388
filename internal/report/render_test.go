// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

func sampleReport() *types.RunReport {
	return &types.RunReport{
		RunID:      "run-1",
		Topic:      "quantum error correction",
		Document:   "## Overview\n\nSurface codes protect logical qubits.",
		Sources:    []string{"Source: Fowler et al., 2012"},
		Scores:     map[string]float64{"overall_score": 0.87, "factual_accuracy": 0.9},
		Iterations: 2,
		Converged:  true,
		AgentInteractions: []types.AgentInteraction{
			{Agent: "researcher", Iteration: 0, Summary: "drafted"},
			{Agent: "editor", Iteration: 0, Summary: "polished"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "yaml", "text", "html"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), f)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatJSON))

	var got types.RunReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "quantum error correction", got.Topic)
	assert.Equal(t, 2, got.Iterations)
	assert.Len(t, got.AgentInteractions, 2)
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatYAML))

	var got types.RunReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "quantum error correction", got.Topic)
	assert.True(t, got.Converged)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatText))
	out := buf.String()

	assert.Contains(t, out, "Research Topic: quantum error correction")
	assert.Contains(t, out, "Surface codes protect logical qubits.")
	assert.Contains(t, out, "Iterations: 2")
	assert.Contains(t, out, "Converged: true")
	assert.Contains(t, out, "Agent Interactions: 2")
	assert.Contains(t, out, "- Source: Fowler et al., 2012")

	// Scores print sorted by name.
	accIdx := strings.Index(out, "factual_accuracy")
	overallIdx := strings.Index(out, "overall_score")
	require.True(t, accIdx >= 0 && overallIdx >= 0)
	assert.Less(t, accIdx, overallIdx)
}

func TestRenderHTML(t *testing.T) {
	report := sampleReport()
	report.Topic = "scaling laws <insights>"

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, report, FormatHTML))
	out := buf.String()

	assert.Contains(t, out, "<h2>Overview</h2>", "document Markdown converted to HTML")
	assert.Contains(t, out, "scaling laws &lt;insights&gt;", "topic HTML-escaped")
	assert.NotContains(t, out, "<insights>")
	assert.Contains(t, out, "Iterations: 2")
}

func TestRenderUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, sampleReport(), Format("pdf")))
}
