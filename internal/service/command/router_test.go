package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/session"
)

type ttl time.Duration

func (t ttl) GetSessionTTL() time.Duration { return time.Duration(t) }

type providerCfg struct{}

func (providerCfg) GetProvider() string     { return "groq" }
func (providerCfg) GetModel() string        { return "llama-3.1-8b-instant" }
func (providerCfg) GetBaseURL() string      { return "" }
func (providerCfg) GetServerAPIKey() string { return "" }

type staticTools []core.Tool

func (s staticTools) GetTools(ctx context.Context) ([]core.Tool, error) { return s, nil }
func (s staticTools) CallTool(ctx context.Context, name, args string) (string, error) {
	return "", nil
}

func newRouter(t *testing.T) (*Router, *session.Manager) {
	t.Helper()
	mgr := session.NewManager(ttl(time.Hour), nil, nil)
	tools := staticTools{
		{Type: "function", Function: core.Function{Name: "arxiv", Description: "Search arXiv\nfor papers."}},
		{Type: "function", Function: core.Function{Name: "wikipedia", Description: "Search Wikipedia."}},
	}
	return NewRouter(providerCfg{}, mgr, tools), mgr
}

func TestRouter_NotACommand(t *testing.T) {
	r, _ := newRouter(t)
	out, ok := r.Execute(context.Background(), "s", "what is go?")
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestRouter_UnknownSuggests(t *testing.T) {
	r, _ := newRouter(t)
	tests := []struct {
		input string
		want  string
	}{
		{input: "/rset", want: "Did you mean /reset?"},
		{input: "/hist", want: "Did you mean /history?"},
		{input: "/tols", want: "Did you mean /tools?"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out, ok := r.Execute(context.Background(), "s", tt.input)
			assert.True(t, ok)
			assert.Contains(t, out, "Unknown command")
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRouter_BotSuffix(t *testing.T) {
	r, _ := newRouter(t)
	out, ok := r.Execute(context.Background(), "s", "/help@searchbot")
	assert.True(t, ok)
	assert.Contains(t, out, "/reset")
}

func TestRouter_ListSorted(t *testing.T) {
	r, _ := newRouter(t)
	var names []string
	for _, c := range r.ListCommands() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"help", "history", "model", "reset", "tools"}, names)
}

func TestResetCommand(t *testing.T) {
	ctx := context.Background()
	r, mgr := newRouter(t)
	s, err := mgr.GetOrCreate(ctx, "s")
	require.NoError(t, err)
	s.AppendTurn(ctx, core.RoleUser, "hi")
	s.AppendTurn(ctx, core.RoleAssistant, "hello")

	out, ok := r.Execute(ctx, "s", "/reset")
	assert.True(t, ok)
	assert.Contains(t, out, "Conversation cleared")
	assert.Len(t, s.Turns(), 1)
}

func TestResetCommand_Busy(t *testing.T) {
	ctx := context.Background()
	r, mgr := newRouter(t)
	s, err := mgr.GetOrCreate(ctx, "s")
	require.NoError(t, err)
	release, err := s.Begin()
	require.NoError(t, err)
	defer release()

	out, _ := r.Execute(ctx, "s", "/reset")
	assert.True(t, strings.HasPrefix(out, "Error: "), out)
}

func TestHistoryCommand(t *testing.T) {
	ctx := context.Background()
	r, mgr := newRouter(t)
	s, err := mgr.GetOrCreate(ctx, "s")
	require.NoError(t, err)
	s.AppendTurn(ctx, core.RoleUser, "first question")
	s.AppendTurn(ctx, core.RoleAssistant, "first answer")

	out, _ := r.Execute(ctx, "s", "/history 2")
	assert.Contains(t, out, "2 of 3")
	assert.Contains(t, out, "**user**: first question")
	assert.NotContains(t, out, session.DefaultGreeting)

	out, _ = r.Execute(ctx, "s", "/history zero")
	assert.Contains(t, out, "invalid turn count")

	out, _ = r.Execute(ctx, "other", "/history")
	assert.Contains(t, out, "No conversation yet")
}

func TestToolsCommand(t *testing.T) {
	r, _ := newRouter(t)
	out, _ := r.Execute(context.Background(), "s", "/tools")
	assert.Contains(t, out, "**arxiv** Search arXiv for papers.")
	assert.Contains(t, out, "**wikipedia**")
}

func TestModelCommand(t *testing.T) {
	r, _ := newRouter(t)
	out, _ := r.Execute(context.Background(), "s", "/model")
	assert.Contains(t, out, "`groq`")
	assert.Contains(t, out, "`llama-3.1-8b-instant`")
}
