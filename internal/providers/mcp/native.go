package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/pkg/conv"
)

const querySchema = `
{
  "type": "object",
  "properties": {
    "query": { "type": "string", "description": "Search query" }
  },
  "required": ["query"]
}
`

// LookupTool describes how one lookup adapter is published as a function tool.
type LookupTool struct {
	ID          core.ToolID
	Name        string
	Description string
}

// LookupTools keeps the dispatch order: paper, encyclopedia, web.
var LookupTools = []LookupTool{
	{
		ID:          core.PaperSearch,
		Name:        "arxiv",
		Description: "Search arXiv for scientific papers. Input is a search query; returns the best matching abstract.",
	},
	{
		ID:          core.EncyclopediaSearch,
		Name:        "wikipedia",
		Description: "Search Wikipedia. Input is a search query; returns a short summary of the best matching page.",
	},
	{
		ID:          core.WebSearch,
		Name:        "search",
		Description: "Search the web with DuckDuckGo. Useful for current events and general questions.",
	},
}

// RegisterLookups publishes each available adapter as a native tool whose
// output is capped at maxChars.
func RegisterLookups(m *Manager, lookups map[core.ToolID]core.Lookup, maxChars int) {
	for _, lt := range LookupTools {
		lookup, ok := lookups[lt.ID]
		if !ok {
			continue
		}
		m.RegisterNativeTool(lt.Name, lt.Description, json.RawMessage(querySchema), lookupHandler(lookup, maxChars))
	}
}

func lookupHandler(lookup core.Lookup, maxChars int) NativeHandler {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		query, err := parseQuery(args)
		if err != nil {
			return "", err
		}
		out, err := lookup.Lookup(ctx, query)
		if err != nil {
			return "", fmt.Errorf("%s: %w", lookup.Name(), err)
		}
		return conv.Truncate(out, maxChars), nil
	}
}

// parseQuery accepts {"query": "..."} and, for models that skip the schema,
// a bare JSON string or plain text.
func parseQuery(args json.RawMessage) (string, error) {
	raw := strings.TrimSpace(string(args))
	if raw == "" {
		return "", fmt.Errorf("invalid arguments: query is required")
	}

	var input struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &input); err == nil {
		if input.Query == "" {
			return "", fmt.Errorf("invalid arguments: query is required")
		}
		return input.Query, nil
	}

	var s string
	if err := json.Unmarshal(args, &s); err == nil && s != "" {
		return s, nil
	}
	if !strings.HasPrefix(raw, "{") {
		return raw, nil
	}
	return "", fmt.Errorf("invalid arguments: %s", conv.Truncate(raw, 100))
}
