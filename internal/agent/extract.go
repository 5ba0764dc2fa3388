// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"regexp"
	"strconv"
	"strings"
)

// Best-effort extraction of structured fields from free-form generation
// output. All functions here degrade to a fallback instead of failing:
// the fragility of keyword and regex heuristics stays isolated from the
// orchestrator's state machine.

// scorePatterns match an overall quality score in review text, most
// specific first.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)overall.*?score[^0-9]*([0-9]*\.?[0-9]+)`),
	regexp.MustCompile(`(?i)quality.*?score[^0-9]*([0-9]*\.?[0-9]+)`),
	regexp.MustCompile(`(?i)score\s*:?[^0-9]*([0-9]*\.?[0-9]+)`),
}

// accuracyPattern matches a factual accuracy score line.
var accuracyPattern = regexp.MustCompile(`(?i)accuracy[^0-9]*score[^0-9]*([0-9]*\.?[0-9]+)|accuracy[^0-9]*([0-9]*\.?[0-9]+)`)

// extractOverallScore pulls a numeric quality score out of review text.
// Returns false when no parseable score is present.
func extractOverallScore(text string) (float64, bool) {
	for _, p := range scorePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if v, ok := normalizeScore(m[1]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// extractAccuracyScore pulls a factual accuracy score out of fact-check text.
func extractAccuracyScore(text string) (float64, bool) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "accuracy") {
			continue
		}
		m := accuracyPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, ok := normalizeScore(raw); ok {
			return v, true
		}
	}
	return 0, false
}

// normalizeScore parses a score string into [0,1]. Values on a 0-100 scale
// are scaled down; anything else out of range is rejected.
func normalizeScore(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if v >= 0 && v <= 1 {
		return v, true
	}
	if v > 1 && v <= 100 {
		return v / 100, true
	}
	return 0, false
}

// extractSources collects lines that name a source or reference.
func extractSources(text string) []string {
	var sources []string
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "source:") || strings.Contains(lower, "reference:") {
			sources = append(sources, strings.TrimSpace(line))
		}
	}
	return sources
}

// parseClaims splits fact-check output into verified and questionable
// claims by tracking which section the text is currently in.
func parseClaims(text string) (verified, questionable []string) {
	section := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		switch {
		case strings.Contains(lower, "verified") || strings.Contains(lower, "confirmed"):
			section = "verified"
			continue
		case strings.Contains(lower, "questionable") || strings.Contains(lower, "unverified"):
			section = "questionable"
			continue
		}

		claim := strings.TrimSpace(strings.TrimLeft(trimmed, "-*0123456789. "))
		if section == "" || len(claim) <= 20 {
			continue
		}
		if section == "verified" {
			verified = append(verified, claim)
		} else {
			questionable = append(questionable, claim)
		}
	}
	return verified, questionable
}

// identifyChanges summarizes how an edit differs from the original draft.
func identifyChanges(original, edited string) []string {
	var changes []string

	switch {
	case len(edited) > len(original)*11/10:
		changes = append(changes, "Content expanded significantly")
	case len(edited) < len(original)*9/10:
		changes = append(changes, "Content condensed")
	}

	if strings.Count(edited, "\n\n") > strings.Count(original, "\n\n") {
		changes = append(changes, "Improved paragraph structure")
	}
	if strings.Contains(edited, "##") && !strings.Contains(original, "##") {
		changes = append(changes, "Added section headers")
	}

	if len(changes) == 0 {
		changes = append(changes, "General improvements and refinements")
	}
	return changes
}

// structureMarkers indicate document structure in Markdown output.
var structureMarkers = []string{"##", "###", "**", "*"}

// improvementScore estimates how much an edit improved the draft, on
// length, line density, and structural markers.
func improvementScore(original, edited string) float64 {
	score := 0.5

	if len(edited) > len(original) {
		score += 0.1
	}
	if strings.Count(edited, "\n")*10 > strings.Count(original, "\n")*12 {
		score += 0.1
	}

	editedStructure, originalStructure := 0, 0
	for _, marker := range structureMarkers {
		if strings.Contains(edited, marker) {
			editedStructure++
		}
		if strings.Contains(original, marker) {
			originalStructure++
		}
	}
	if editedStructure > originalStructure {
		score += 0.1
	}

	if score > 1 {
		score = 1
	}
	return score
}

// Summary returns the stage's raw output truncated to 200 runes for the
// audit trail.
func (r Result) Summary() string {
	return truncateSummary(r.Output, 200)
}

// truncateSummary shortens raw output for the audit trail.
func truncateSummary(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
