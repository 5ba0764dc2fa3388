// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a Run Report for the caller: machine formats
// (json, yaml), a human-readable text layout, and a standalone HTML page
// with the document converted from Markdown.
package report

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// Format selects the rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatYAML, FormatText, FormatHTML:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json, yaml, text, or html)", name)
	}
}

// Render writes the report to w in the requested format.
func Render(w io.Writer, report *types.RunReport, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding report as JSON: %w", err)
		}
		return nil
	case FormatYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("encoding report as YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatText:
		return renderText(w, report)
	case FormatHTML:
		return renderHTML(w, report)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

const rule = "============================================================"

// renderText writes the human-readable layout: topic header, document
// body, then a summary block.
func renderText(w io.Writer, report *types.RunReport) error {
	fmt.Fprintf(w, "Research Topic: %s\n%s\n\n", report.Topic, rule)
	fmt.Fprintln(w, report.Document)
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "Iterations: %d\n", report.Iterations)
	fmt.Fprintf(w, "Converged: %v\n", report.Converged)

	if len(report.Scores) > 0 {
		fmt.Fprintln(w, "Scores:")
		names := make([]string, 0, len(report.Scores))
		for name := range report.Scores {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %.2f\n", name, report.Scores[name])
		}
	}

	if len(report.Sources) > 0 {
		fmt.Fprintln(w, "Sources:")
		for _, src := range report.Sources {
			fmt.Fprintf(w, "  - %s\n", src)
		}
	}

	fmt.Fprintf(w, "Agent Interactions: %d\n", len(report.AgentInteractions))
	return nil
}

// renderHTML converts the document Markdown and wraps it in a minimal page.
func renderHTML(w io.Writer, report *types.RunReport) error {
	var body strings.Builder
	if err := goldmark.Convert([]byte(report.Document), &body); err != nil {
		return fmt.Errorf("converting document Markdown: %w", err)
	}

	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<h1>%s</h1>
%s
<hr>
<p>Iterations: %d, Converged: %v</p>
</body>
</html>
`, html.EscapeString(report.Topic), html.EscapeString(report.Topic),
		body.String(), report.Iterations, report.Converged)
	return nil
}
