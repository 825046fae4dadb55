package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/searchbot/internal/core"
)

type ToolsCommand struct {
	tools     core.ToolServer
	formatter *ResponseFormatter
}

func NewToolsCommand(tools core.ToolServer) core.Command {
	return &ToolsCommand{
		tools:     tools,
		formatter: NewResponseFormatter(),
	}
}

func (c *ToolsCommand) Name() string {
	return "tools"
}

func (c *ToolsCommand) Description() string {
	return "List the search tools and connected MCP tools"
}

func (c *ToolsCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	tools, err := c.tools.GetTools(ctx)
	if err != nil {
		return "", err
	}

	if len(tools) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Tools"),
			"No tools are available.",
			c.formatter.Tip("Check mcp_config.json if external tools should be connected"),
		), nil
	}

	items := make([]string, len(tools))
	for i, tool := range tools {
		items[i] = fmt.Sprintf("**%s** %s", tool.Function.Name, oneLine(tool.Function.Description, 120))
	}

	return c.formatter.Combine(
		c.formatter.Info("Tools"),
		c.formatter.Label("Available", fmt.Sprintf("%d", len(tools))),
		c.formatter.List(items),
	), nil
}
