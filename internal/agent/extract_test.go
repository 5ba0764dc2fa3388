// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"math"
	"strings"
	"testing"
)

func TestExtractOverallScore(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   float64
		wantOK bool
	}{
		{
			name:   "labeled overall score",
			text:   "The draft is solid.\nOverall quality score: 0.85\nSome weaknesses remain.",
			want:   0.85,
			wantOK: true,
		},
		{
			name:   "overall with separator noise",
			text:   "Overall score - 0.7",
			want:   0.7,
			wantOK: true,
		},
		{
			name:   "quality score variant",
			text:   "Quality score: 0.65",
			want:   0.65,
			wantOK: true,
		},
		{
			name:   "bare score label",
			text:   "Score: 0.9",
			want:   0.9,
			wantOK: true,
		},
		{
			name:   "percentage scale normalized",
			text:   "Overall quality score: 85",
			want:   0.85,
			wantOK: true,
		},
		{
			name:   "no score present",
			text:   "This review contains prose only, no numeric rating.",
			wantOK: false,
		},
		{
			name:   "empty input",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractOverallScore(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("extractOverallScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractAccuracyScore(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   float64
		wantOK bool
	}{
		{
			name:   "accuracy score line",
			text:   "Verified claims:\n- claim one\nFactual accuracy score: 0.92",
			want:   0.92,
			wantOK: true,
		},
		{
			name:   "accuracy without score keyword",
			text:   "Accuracy: 0.75",
			want:   0.75,
			wantOK: true,
		},
		{
			name:   "percentage scale",
			text:   "Overall factual accuracy: 90",
			want:   0.9,
			wantOK: true,
		},
		{
			name:   "accuracy mentioned without number",
			text:   "The accuracy of these claims could not be established.",
			wantOK: false,
		},
		{
			name:   "no accuracy line",
			text:   "Score: 0.9",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractAccuracyScore(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("extractAccuracyScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"0.5", 0.5, true},
		{"0", 0, true},
		{"1", 1, true},
		{"85", 0.85, true},
		{"100", 1, true},
		{"101", 0, false},
		{"-0.2", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := normalizeScore(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("normalizeScore(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractSources(t *testing.T) {
	text := `Research overview follows.

Source: Attention Is All You Need (Vaswani et al., 2017)
Some discussion text in between.
Reference: BERT pre-training (Devlin et al., 2019)
source: lowercase marker also counts
A line mentioning sources in passing does not.`

	got := extractSources(text)
	want := []string{
		"Source: Attention Is All You Need (Vaswani et al., 2017)",
		"Reference: BERT pre-training (Devlin et al., 2019)",
		"source: lowercase marker also counts",
	}

	if len(got) != len(want) {
		t.Fatalf("extractSources() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("source %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseClaims(t *testing.T) {
	text := `Analysis of the draft follows.

Verified claims:
- Transformer models rely on self-attention rather than recurrence
- short
2. Pre-training on large corpora improves downstream task performance

Questionable claims:
* The approach eliminates all need for labeled training data entirely`

	verified, questionable := parseClaims(text)

	wantVerified := []string{
		"Transformer models rely on self-attention rather than recurrence",
		"Pre-training on large corpora improves downstream task performance",
	}
	if len(verified) != len(wantVerified) {
		t.Fatalf("verified = %v, want %v", verified, wantVerified)
	}
	for i := range wantVerified {
		if verified[i] != wantVerified[i] {
			t.Errorf("verified %d = %q, want %q", i, verified[i], wantVerified[i])
		}
	}

	if len(questionable) != 1 {
		t.Fatalf("questionable = %v, want one claim", questionable)
	}
	if !strings.Contains(questionable[0], "labeled training data") {
		t.Errorf("questionable claim = %q", questionable[0])
	}
}

func TestParseClaimsIgnoresTextBeforeSections(t *testing.T) {
	verified, questionable := parseClaims("A long paragraph of preamble that names no section headers at all.")
	if len(verified) != 0 || len(questionable) != 0 {
		t.Errorf("claims parsed outside any section: %v / %v", verified, questionable)
	}
}

func TestIdentifyChanges(t *testing.T) {
	tests := []struct {
		name     string
		original string
		edited   string
		want     []string
	}{
		{
			name:     "expansion",
			original: strings.Repeat("a", 100),
			edited:   strings.Repeat("a", 150),
			want:     []string{"Content expanded significantly"},
		},
		{
			name:     "condensed with headers",
			original: strings.Repeat("b", 200),
			edited:   "## Summary\n" + strings.Repeat("b", 100),
			want:     []string{"Content condensed", "Added section headers"},
		},
		{
			name:     "no detectable change",
			original: "same text",
			edited:   "same text",
			want:     []string{"General improvements and refinements"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identifyChanges(tt.original, tt.edited)
			if len(got) != len(tt.want) {
				t.Fatalf("identifyChanges() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("change %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestImprovementScore(t *testing.T) {
	original := "plain draft\nwith two lines"
	edited := "## Introduction\n\nA **longer** draft\n\nwith more structure\nand more lines\nthan before"

	got := improvementScore(original, edited)
	if got <= 0.5 {
		t.Errorf("improvementScore() = %v, want > 0.5 for a structured expansion", got)
	}
	if got > 1 {
		t.Errorf("improvementScore() = %v, exceeds 1", got)
	}

	if base := improvementScore("same", "same"); base != 0.5 {
		t.Errorf("improvementScore(unchanged) = %v, want 0.5", base)
	}
}

func TestSummaryTruncation(t *testing.T) {
	short := Result{Output: "brief output"}
	if short.Summary() != "brief output" {
		t.Errorf("Summary() = %q, want unmodified output", short.Summary())
	}

	long := Result{Output: strings.Repeat("x", 300)}
	got := long.Summary()
	if len([]rune(got)) != 203 {
		t.Errorf("len(Summary()) = %d, want 200 runes plus ellipsis", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Summary() = %q, want trailing ellipsis", got)
	}
}
