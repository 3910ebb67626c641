package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"intervuai/backend/internal/llm"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

const (
	ModeQuestion   = "question"
	ModeEvaluation = "evaluation"
	ModeSummary    = "summary"
)

// PromptProvider builds model prompts from named templates.
type PromptProvider interface {
	BuildPrompt(mode, level string, data map[string]string) (llm.Prompt, error)
	Modes() []string
}

type PromptManager struct {
	prompts map[string]map[string]llm.Prompt // mode -> level -> prompt with placeholders
}

// loaded prompt template
type PromptTemplate struct {
	System       string            `yaml:"system"`
	MaxTokens    int               `yaml:"max_tokens"`
	BasePrompt   string            `yaml:"base_prompt"`
	DetailLevels map[string]string `yaml:"detail_levels"`
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		prompts: make(map[string]map[string]llm.Prompt),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// BuildPrompt fills {{.Key}} placeholders from data.
func (pm *PromptManager) BuildPrompt(mode, level string, data map[string]string) (llm.Prompt, error) {
	modePrompts, exists := pm.prompts[mode]
	if !exists {
		return llm.Prompt{}, fmt.Errorf("template not found for mode: %s", mode)
	}

	prompt, exists := modePrompts[level]
	if !exists {
		return llm.Prompt{}, fmt.Errorf("detail level '%s' not found for mode '%s'", level, mode)
	}

	text := prompt.User
	for key, value := range data {
		text = strings.ReplaceAll(text, "{{."+key+"}}", value)
	}
	prompt.User = text
	return prompt, nil
}

func (pm *PromptManager) Modes() []string {
	modes := make([]string, 0, len(pm.prompts))
	for mode := range pm.prompts {
		modes = append(modes, mode)
	}
	return modes
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var tmpl PromptTemplate
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.prompts[name] = make(map[string]llm.Prompt)

		for level, detail := range tmpl.DetailLevels {
			var full strings.Builder
			if tmpl.BasePrompt != "" {
				full.WriteString(strings.TrimRight(tmpl.BasePrompt, "\n"))
				full.WriteString("\n\n")
			}
			full.WriteString(strings.TrimRight(detail, "\n"))

			pm.prompts[name][level] = llm.Prompt{
				System:    strings.TrimSpace(tmpl.System),
				User:      full.String(),
				MaxTokens: tmpl.MaxTokens,
			}
		}
	}

	return nil
}
