package installer

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/searchbot/internal/providers/llm"
)

// ProviderStep selects the completion backend.
type ProviderStep struct {
	menu menu
}

func NewProviderStep() Step {
	return &ProviderStep{menu: menu{
		title: "Select your completion provider:",
		choices: []choice{
			{id: llm.ProviderGroq, title: "Groq"},
			{id: llm.ProviderOpenAI, title: "OpenAI"},
			{id: llm.ProviderAnthropic, title: "Anthropic"},
			{id: llm.ProviderOpenRouter, title: "OpenRouter"},
			{id: llm.ProviderOllama, title: "Ollama (local)"},
			{id: llm.ProviderCustom, title: "Custom OpenAI-compatible endpoint"},
		},
	}}
}

func (s *ProviderStep) Init() tea.Cmd {
	return nil
}

func (s *ProviderStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if c, ok := s.menu.update(msg); ok {
		state.EnvVars[keyProvider] = c.id
		return nil, nil
	}
	return s, nil
}

func (s *ProviderStep) View(state *InstallState) string {
	return s.menu.view()
}
