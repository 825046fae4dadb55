package core

import "encoding/json"

const (
	BotName          = "SearchBot"
	BotUserAgent     = "SearchBot/0.1 (+https://github.com/sandevgo/searchbot)"
	BotRepositoryURL = "https://github.com/sandevgo/searchbot"
	BotVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolID names one of the lookup tools the heuristic can select.
type ToolID string

const (
	WebSearch          ToolID = "web_search"
	PaperSearch        ToolID = "paper_search"
	EncyclopediaSearch ToolID = "encyclopedia_search"
)

// ToolOrder is the fixed dispatch and prompt order.
var ToolOrder = []ToolID{PaperSearch, EncyclopediaSearch, WebSearch}

// ToolResult lives for one request cycle and is never stored in a conversation.
type ToolResult struct {
	Source  string `json:"source_name"`
	Snippet string `json:"snippet"`
	Failed  bool   `json:"failed,omitempty"`
}

type Function struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is the wire shape sent to completion providers.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length,omitempty"`
}
