package mcp

import (
	"context"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/pkg/conv"
)

// NewServer publishes the lookup adapters as an MCP server so other agents
// can use them.
func NewServer(lookups map[core.ToolID]core.Lookup, maxChars int) *server.MCPServer {
	s := server.NewMCPServer(core.BotName, core.BotVersion, server.WithToolCapabilities(false))

	for _, lt := range LookupTools {
		lookup, ok := lookups[lt.ID]
		if !ok {
			continue
		}
		tool := mcpproto.NewTool(lt.Name,
			mcpproto.WithDescription(lt.Description),
			mcpproto.WithString("query", mcpproto.Required(), mcpproto.Description("Search query")),
		)
		s.AddTool(tool, serverHandler(lookup, maxChars))
	}
	return s
}

func serverHandler(lookup core.Lookup, maxChars int) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpproto.NewToolResultError(err.Error()), nil
		}
		out, err := lookup.Lookup(ctx, query)
		if err != nil {
			return mcpproto.NewToolResultError(lookup.Name() + ": " + err.Error()), nil
		}
		return mcpproto.NewToolResultText(conv.Truncate(out, maxChars)), nil
	}
}

// ServeStdio blocks serving s on stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
