package command

import (
	"github.com/sandevgo/searchbot/internal/core"
)

// NewRouter wires the chat commands, /help included.
func NewRouter(cfg core.ProviderConfig, sessions Sessions, tools core.ToolServer) *Router {
	help := &HelpCommand{formatter: NewResponseFormatter()}
	r := New([]core.Command{
		NewResetCommand(sessions),
		NewHistoryCommand(sessions),
		NewToolsCommand(tools),
		NewModelCommand(cfg),
		help,
	})
	help.list = r.ListCommands
	return r
}
