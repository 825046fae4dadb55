package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/pkg/tokens"
)

func turns(texts ...string) []session.Turn {
	out := make([]session.Turn, 0, len(texts))
	for i, text := range texts {
		role := core.RoleUser
		if i%2 == 0 {
			role = core.RoleAssistant
		}
		out = append(out, session.Turn{Role: role, Text: text})
	}
	return out
}

func contents(msgs []core.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}

func TestBuildContext_Unlimited(t *testing.T) {
	msgs := buildContext(context.Background(), "sys", turns("seed", "q1", "a1", "q2"), 0, tokens.NewEstimator())
	assert.Equal(t, []string{"sys", "seed", "q1", "a1", "q2"}, contents(msgs))
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
}

func TestBuildContext_DropsOldestAfterSeed(t *testing.T) {
	long := strings.Repeat("a", 40) // 10 tokens each
	conv := turns("seed", long, long, long, "last")

	msgs := buildContext(context.Background(), "", conv, 13, tokens.NewEstimator())
	assert.Equal(t, []string{"seed", long, "last"}, contents(msgs))

	msgs = buildContext(context.Background(), "", conv, 5, tokens.NewEstimator())
	assert.Equal(t, []string{"seed", "last"}, contents(msgs))

	msgs = buildContext(context.Background(), "", conv, 32, tokens.NewEstimator())
	assert.Len(t, msgs, 5)
}

func TestBuildContext_KeepsSeedAndNewest(t *testing.T) {
	conv := turns("seed", strings.Repeat("b", 400))
	msgs := buildContext(context.Background(), "sys", conv, 1, tokens.NewEstimator())
	assert.Len(t, msgs, 3)
}

func TestSanitizeToolCalls(t *testing.T) {
	tests := []struct {
		name     string
		input    []core.Message
		expected []core.Message
	}{
		{
			name:     "empty messages",
			input:    []core.Message{},
			expected: nil,
		},
		{
			name: "normal cycle",
			input: []core.Message{
				{Role: core.RoleUser, Content: "hi"},
				{Role: core.RoleAssistant, Content: "calling tool", ToolCalls: []core.ToolCall{{ID: "call_1"}}},
				{Role: core.RoleTool, ToolCallID: "call_1", Content: "result"},
			},
			expected: []core.Message{
				{Role: core.RoleUser, Content: "hi"},
				{Role: core.RoleAssistant, Content: "calling tool", ToolCalls: []core.ToolCall{{ID: "call_1"}}},
				{Role: core.RoleTool, ToolCallID: "call_1", Content: "result"},
			},
		},
		{
			name: "orphaned tool message at start",
			input: []core.Message{
				{Role: core.RoleTool, ToolCallID: "call_1", Content: "result"},
				{Role: core.RoleUser, Content: "hi"},
			},
			expected: []core.Message{
				{Role: core.RoleUser, Content: "hi"},
			},
		},
		{
			name: "tool call id mismatch",
			input: []core.Message{
				{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{{ID: "call_1"}}},
				{Role: core.RoleTool, ToolCallID: "call_2", Content: "result"},
			},
			expected: []core.Message{
				{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{{ID: "call_1"}}},
			},
		},
		{
			name: "duplicate answer to one call",
			input: []core.Message{
				{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{{ID: "call_1"}}},
				{Role: core.RoleTool, ToolCallID: "call_1", Content: "first"},
				{Role: core.RoleTool, ToolCallID: "call_1", Content: "second"},
			},
			expected: []core.Message{
				{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{{ID: "call_1"}}},
				{Role: core.RoleTool, ToolCallID: "call_1", Content: "first"},
			},
		},
		{
			name: "user message closes pending calls",
			input: []core.Message{
				{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{{ID: "call_1"}}},
				{Role: core.RoleUser, Content: "interrupt"},
				{Role: core.RoleTool, ToolCallID: "call_1", Content: "result"},
			},
			expected: []core.Message{
				{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{{ID: "call_1"}}},
				{Role: core.RoleUser, Content: "interrupt"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeToolCalls(context.Background(), tt.input)
			require.Equal(t, tt.expected, got)
		})
	}
}
