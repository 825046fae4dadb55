package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ChannelStep selects which transports the serve command starts.
type ChannelStep struct {
	menu menu
}

func NewChannelStep() Step {
	return &ChannelStep{menu: menu{
		title: "Where do you want to chat?",
		choices: []choice{
			{id: "web", title: "Web page"},
			{id: "telegram", title: "Telegram"},
			{id: "both", title: "Web page and Telegram"},
			{id: "none", title: "Terminal only (searchbot chat)"},
		},
	}}
}

func (s *ChannelStep) Init() tea.Cmd {
	return nil
}

func (s *ChannelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	c, ok := s.menu.update(msg)
	if !ok {
		return s, nil
	}
	web, telegram := "false", "false"
	switch c.id {
	case "web":
		web = "true"
	case "telegram":
		telegram = "true"
	case "both":
		web, telegram = "true", "true"
	}
	state.EnvVars[keyEnableWeb] = web
	state.EnvVars[keyEnableTelegram] = telegram
	return nil, nil
}

func (s *ChannelStep) View(state *InstallState) string {
	return s.menu.view()
}
