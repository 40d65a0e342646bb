package gemini

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/taskfable/questlog-api/internal/generation"
)

// defaultPromptTemplate is used when no template file is configured.
// The reward line instruction matches what parseRewards expects.
const defaultPromptTemplate = `You are the narrator of a lighthearted fantasy quest log.
A hero has just set out on a new quest.

Quest title: {{.Title}}
{{- if .Description}}
Quest details: {{.Description}}
{{- end}}
{{- if .PriorContext}}

Earlier chapters of this quest log:
{{.PriorContext}}
{{- end}}

Write a short story (2-4 sentences) describing the hero beginning this
quest, continuing the tone of any earlier chapters. End your response
with a reward line in exactly this format:
XP:<number>, Currency:<number>

Keep XP between 5 and 50 and Currency between 1 and 25.`

// promptData carries the template inputs for one generation call.
type promptData struct {
	Title        string
	Description  string
	PriorContext string
}

// loadPromptTemplate parses the template at path, or the built-in
// default when path is empty.
func loadPromptTemplate(path string) (*template.Template, error) {
	content := defaultPromptTemplate
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				generation.ErrInvalidConfig, path, err)
		}
		content = string(raw)
	}

	tmpl, err := template.New("story").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}
	return tmpl, nil
}

// renderPrompt executes the template with the given data.
func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
