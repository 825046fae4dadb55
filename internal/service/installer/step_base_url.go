package installer

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/searchbot/internal/providers/llm"
)

const defaultOllamaURL = "http://localhost:11434"

// BaseURLStep asks for the endpoint of self-hosted backends. Other providers skip it.
type BaseURLStep struct {
	input    textinput.Model
	provider string
}

func NewBaseURLStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.Width = 50
	return &BaseURLStep{input: ti}
}

func (s *BaseURLStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *BaseURLStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.provider == "" {
		s.provider = state.provider()
		switch s.provider {
		case llm.ProviderOllama:
			s.input.Placeholder = defaultOllamaURL
		case llm.ProviderCustom:
			s.input.Placeholder = "https://api.example.com/v1"
		default:
			return nil, nil
		}
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" && s.provider == llm.ProviderOllama {
			val = defaultOllamaURL
		}
		if val != "" {
			state.EnvVars[keyBaseURL] = val
			return nil, nil
		}
	}
	return s, cmd
}

func (s *BaseURLStep) View(state *InstallState) string {
	title := "Enter the base URL of your OpenAI-compatible endpoint:"
	if s.provider == llm.ProviderOllama {
		title = "Enter the Ollama URL (empty for " + defaultOllamaURL + "):"
	}
	return title + "\n\n" + s.input.View() + "\n\n(press enter to confirm)\n"
}
