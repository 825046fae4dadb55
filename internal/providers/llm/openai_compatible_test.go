package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/searchbot/internal/core"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *OpenAICompatible {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewCustomOpenAI(srv.URL, "sk-test", "llama-test")
}

func TestOpenAICompatible_Chat(t *testing.T) {
	var got map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, chatCompletionsPath, r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`)
	})

	msg, err := p.Chat(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "hello"}, msg)
	assert.Equal(t, "llama-test", got["model"])
	_, hasTools := got["tools"]
	assert.False(t, hasTools)
}

func TestOpenAICompatible_ChatToolCalls(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Tools []core.Tool `json:"tools"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Tools, 1)
		assert.Equal(t, "wikipedia", payload.Tools[0].Function.Name)

		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"wikipedia","arguments":"{\"query\":\"go\"}"}}]}}]}`)
	})

	tools := []core.Tool{{
		Type:     "function",
		Function: core.Function{Name: "wikipedia", Parameters: json.RawMessage(`{"type":"object"}`)},
	}}
	msg, err := p.Chat(context.Background(), nil, tools)
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
	assert.JSONEq(t, `{"query":"go"}`, msg.ToolCalls[0].Function.Arguments)
}

func TestOpenAICompatible_StatusError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Invalid API Key"}}`)
	})

	_, err := p.Chat(context.Background(), nil, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Contains(t, err.Error(), "Invalid API Key")
}

func TestOpenAICompatible_EmptyChoices(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	_, err := p.Chat(context.Background(), nil, nil)
	assert.ErrorContains(t, err, "empty choices")
}

func TestOpenAICompatible_ChatStream(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, true, payload["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"role":"assistant"}}]}`+"\n\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"Hel"}}]}`+"\n\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"lo"}}]}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var deltas []string
	msg, err := p.ChatStream(context.Background(), nil, func(d string) { deltas = append(deltas, d) })
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, deltas)
	assert.Equal(t, "Hello", msg.Content)
	assert.Equal(t, core.RoleAssistant, msg.Role)
}

func TestOpenAICompatible_ChatStreamError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "rate limited")
	})

	_, err := p.ChatStream(context.Background(), nil, nil)
	assert.ErrorContains(t, err, "http 429: rate limited")
}

func TestOpenAICompatible_Models(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"id":"llama-3.1-8b-instant","context_window":131072},{"id":"x","name":"X Model","context_length":8192}]}`)
	})

	models, err := p.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Model{
		{ID: "llama-3.1-8b-instant", Name: "llama-3.1-8b-instant", ContextLength: 131072},
		{ID: "x", Name: "X Model", ContextLength: 8192},
	}, models)
}

func TestOllama_Models(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[{"name":"llama3:8b"}]}`)
	}))
	defer srv.Close()

	models, err := NewOllama(srv.URL, "", "llama3:8b").Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "llama3:8b", models[0].ID)
}

func TestOpenRouter_Headers(t *testing.T) {
	p := NewOpenRouter("k", "m")
	h := p.headers()
	assert.Equal(t, core.BotRepositoryURL, h["HTTP-Referer"])
	assert.Equal(t, core.BotName, h["X-Title"])
	assert.Equal(t, "Bearer k", h["Authorization"])
}
