package installer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/searchbot/internal/config"
	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/providers/llm"
)

type catalogFunc func(ctx context.Context, cfg core.ProviderConfig, apiKey string) ([]core.Model, error)

// fetchModels asks the selected backend for its model list.
func fetchModels(ctx context.Context, cfg core.ProviderConfig, apiKey string) ([]core.Model, error) {
	p, err := llm.NewProvider(ctx, cfg, apiKey)
	if err != nil {
		return nil, err
	}
	catalog, ok := p.(core.ModelCatalog)
	if !ok {
		return nil, errors.New("provider cannot list models")
	}
	return catalog.Models(ctx)
}

// ModelStep lists the provider's models. When the list cannot be fetched
// the user may keep the provider default.
type ModelStep struct {
	list     list.Model
	catalog  catalogFunc
	loading  bool
	fetching bool
	err      error
}

func NewModelStep() Step {
	return newModelStep(fetchModels)
}

func newModelStep(catalog catalogFunc) *ModelStep {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select Model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{
		list:    l,
		catalog: catalog,
		loading: true,
	}
}

func (s *ModelStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.loading && !s.fetching {
		s.fetching = true
		cfg := config.AppConfig{
			Provider: state.provider(),
			BaseURL:  state.EnvVars[keyBaseURL],
		}
		apiKey := state.EnvVars[keyAPIKey]

		return s, func() tea.Msg {
			if apiKey == "" && llm.RequiresKey(cfg.Provider) {
				return errMsg(errors.New("no API key to list models with"))
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			models, err := s.catalog(ctx, cfg, apiKey)
			if err != nil {
				return errMsg(err)
			}
			if len(models) == 0 {
				return errMsg(errors.New("provider returned no models"))
			}

			items := make([]list.Item, 0, len(models))
			for _, mod := range models {
				desc := "ID: " + mod.ID
				if mod.ContextLength > 0 {
					desc = fmt.Sprintf("%s | Context: %d", desc, mod.ContextLength)
				}
				title := mod.Name
				if title == "" {
					title = mod.ID
				}
				items = append(items, item{id: mod.ID, title: title, desc: desc})
			}
			return modelsMsg(items)
		}
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case modelsMsg:
		s.list.SetItems(msg)
		s.loading = false
		s.fetching = false
		return s, nil

	case errMsg:
		s.loading = false
		s.fetching = false
		s.err = msg
		return s, nil

	case tea.KeyMsg:
		if s.err != nil {
			switch msg.String() {
			case "enter":
				s.err = nil
				s.loading = true
				s.fetching = false
			case "s":
				if m, ok := defaultModels[state.provider()]; ok {
					state.EnvVars[keyModel] = m
				}
				return nil, nil
			}
			return s, nil
		}

		if msg.String() == "enter" {
			wasFiltering := s.list.FilterState() == list.Filtering
			s.list, cmd = s.list.Update(msg)

			if wasFiltering || s.list.FilterState() == list.Filtering {
				return s, cmd
			}

			if i, ok := s.list.SelectedItem().(item); ok {
				state.EnvVars[keyModel] = i.id
				return nil, nil
			}
			return s, cmd
		}
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error fetching models: %v", s.err)) +
			"\n\nCheck your API key and connection.\n\n(press enter to retry, s to keep the default model, ctrl+c to quit)\n"
	}
	if s.loading {
		return "Fetching models...\n"
	}
	return s.list.View()
}
