// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"fmt"
	"text/template"
)

// systemPrompt builds the role-specific system instruction shared by all
// stages.
func systemPrompt(role, description string) string {
	return fmt.Sprintf(`You are a %s in an AI research lab.
Your role is to %s.
Be thorough, accurate, and collaborative with other agents.`, role, description)
}

var researchPromptTmpl = template.Must(template.New("research").Parse(`Conduct comprehensive research on the following topic:

Topic: {{.Topic}}
{{- if .Requirements}}

User requirements: {{.Requirements}}
{{- end}}
{{- if .RetrievedSources}}

Relevant papers found in a literature search:
{{- range .RetrievedSources}}
- {{.}}
{{- end}}
{{- end}}

Please provide:
1. A detailed overview of the topic
2. Key findings and insights
3. Relevant sources and citations (prefix each with "Source:")
4. Areas that need further investigation

Format your response as a structured research document section.`))

var factCheckPromptTmpl = template.Must(template.New("factcheck").Parse(`Fact-check the following research content:

Content:
---
{{.Content}}
---
{{- if .Sources}}

Sources to validate:
{{- range .Sources}}
- {{.}}
{{- end}}
{{- end}}

Please:
1. **Identify factual claims** in the content
2. **Verify each claim** against available sources and general knowledge
3. **Check for inconsistencies** or contradictions
4. **Validate citations** - ensure they support the claims made
5. **Flag unsupported claims** that lack evidence

Cross-reference mode: {{if .CrossReference}}Enabled{{else}}Disabled{{end}}

Provide:
- A "Verified claims" section listing confirmed claims
- A "Questionable claims" section listing unverified or doubtful claims
- Overall factual accuracy score (0-1)`))

var reviewPromptTmpl = template.Must(template.New("review").Parse(`Review the following research content on the topic: "{{.Topic}}"

Content to review:
---
{{.Content}}
---

Please provide a comprehensive review covering:
1. **Methodological Quality**: {{if .CheckMethodology}}Assess the research methodology, data sources, and analytical approach.{{else}}Skip methodology check.{{end}}
2. **Logical Coherence**: {{if .CheckCoherence}}Evaluate the logical flow, argument structure, and consistency.{{else}}Skip coherence check.{{end}}
3. **Clarity and Presentation**: Assess writing clarity, organization, and readability.
4. **Completeness**: Identify missing information or underdeveloped sections.
5. **Citations and Sources**: Evaluate the quality and relevance of citations.

Provide:
- Overall quality score (0-1)
- Specific strengths and weaknesses
- Detailed recommendations for improvement
- Priority areas that need revision

Be thorough but constructive. Strictness level: {{.Strictness}}`))

var editPromptTmpl = template.Must(template.New("edit").Parse(`Edit and synthesize the following research content on: "{{.Topic}}"

Original Content:
---
{{.Content}}
---
{{- if .Feedback}}

Review Feedback to Incorporate:
---
{{.Feedback}}
---
{{- end}}

Please:
1. **Synthesize** the content into a coherent, well-structured document
2. **Improve clarity** and readability
3. **Ensure consistency** in terminology and style
4. **Integrate feedback** from reviewers (if provided)
5. **Enhance structure** with clear sections and transitions
6. **Verify citations** are properly formatted
7. **Maintain accuracy** while improving presentation

Synthesis mode: {{.SynthesisMode}}

Provide the improved, synthesized version of the research document.`))

// renderPrompt executes a prompt template against its data.
func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
