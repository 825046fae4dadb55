package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep fills derived values and drops empty answers.
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	finalize(state)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

func finalize(state *InstallState) {
	if state.EnvVars[keyTelegramToken] == "" {
		state.EnvVars[keyEnableTelegram] = "false"
		delete(state.EnvVars, keyTelegramOwner)
	}
	if state.EnvVars[keyModel] == "" {
		if m, ok := defaultModels[state.provider()]; ok {
			state.EnvVars[keyModel] = m
		}
	}
	// an installed bot keeps its conversations across restarts
	if state.EnvVars[keyStore] == "" {
		state.EnvVars[keyStore] = "sqlite"
	}
	if state.EnvVars[keyDebug] == "" {
		state.EnvVars[keyDebug] = "0"
	}

	for k, v := range state.EnvVars {
		if v == "" {
			delete(state.EnvVars, k)
		}
	}
}
