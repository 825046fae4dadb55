package web

import (
	"context"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/agent"
	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/pkg/conv"
)

type ttl time.Duration

func (t ttl) GetSessionTTL() time.Duration { return time.Duration(t) }

type runnerFunc func(ctx context.Context, s *session.Session, query string, onEvent func(agent.Event)) (agent.Result, error)

func (f runnerFunc) Run(ctx context.Context, s *session.Session, query string, onEvent func(agent.Event)) (agent.Result, error) {
	return f(ctx, s, query, onEvent)
}

// echoRunner behaves like a successful cycle that searched Wikipedia.
func echoRunner() agent.Runner {
	return runnerFunc(func(ctx context.Context, s *session.Session, query string, onEvent func(agent.Event)) (agent.Result, error) {
		if s.APIKey() == "" {
			s.AppendTurn(ctx, core.RoleUser, query)
			onEvent(agent.Event{Kind: agent.EventError, Text: agent.ErrMissingCredential.Error()})
			return agent.Result{}, agent.ErrMissingCredential
		}
		s.AppendTurn(ctx, core.RoleUser, query)
		onEvent(agent.Event{Kind: agent.EventToolStart, Tool: "Wikipedia", Text: "Now searching Wikipedia..."})
		onEvent(agent.Event{Kind: agent.EventToolResult, Tool: "Wikipedia", Text: "snippet"})
		answer := "echo: " + query
		s.AppendTurn(ctx, core.RoleAssistant, answer)
		onEvent(agent.Event{Kind: agent.EventAnswer, Text: answer})
		return agent.Result{Answer: answer}, nil
	})
}

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	sessions *session.Manager
}

func newEnv(t *testing.T, runner agent.Runner, opts Options) *testEnv {
	t.Helper()
	mgr := session.NewManager(ttl(time.Hour), nil, nil)
	s, err := NewServer(opts, runner, mgr)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: ts, client: &http.Client{Jar: jar}, sessions: mgr}
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) history(t *testing.T) historyResponse {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + "/api/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var h historyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	return h
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestIndex_RendersSeedAndSetsCookie(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{})

	resp, err := env.client.Get(env.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, html.UnescapeString(page), session.DefaultGreeting)
	assert.Contains(t, page, "no key")

	u, _ := url.Parse(env.srv.URL)
	cookies := env.client.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.True(t, validID(cookies[0].Value))
	assert.Equal(t, 1, env.sessions.Len())
}

func TestIndex_SanitizesTurns(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{})
	h := env.history(t)
	s, err := env.sessions.Get(h.SessionID)
	require.NoError(t, err)
	s.AppendTurn(context.Background(), core.RoleAssistant, "**bold** <script>alert(1)</script>")

	resp, err := env.client.Get(env.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	page := body(t, resp)
	assert.Contains(t, page, "<strong>bold</strong>")
	assert.NotContains(t, page, "alert(1)</script>")
}

func TestChat_MissingKeyStreamsError(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{})

	resp := env.post(t, "/api/chat", url.Values{"message": {"hello"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	stream := body(t, resp)
	assert.Contains(t, stream, "event: error")
	assert.Contains(t, stream, "missing completion API key")

	h := env.history(t)
	require.Len(t, h.Turns, 2)
	assert.Equal(t, core.RoleUser, h.Turns[1].Role)
}

func TestChat_StreamsCycle(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{})

	resp := env.post(t, "/api/key", url.Values{"api_key": {"gsk-123"}})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, env.history(t).HasKey)

	resp = env.post(t, "/api/chat", url.Values{"message": {"What is quantum computing?"}})
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	stream := body(t, resp)

	start := strings.Index(stream, "event: tool_start")
	result := strings.Index(stream, "event: tool_result")
	answer := strings.Index(stream, "event: answer")
	assert.True(t, start >= 0 && start < result && result < answer, stream)
	assert.Contains(t, stream, `"text":"echo: What is quantum computing?"`)

	h := env.history(t)
	require.Len(t, h.Turns, 3)
	assert.Equal(t, "echo: What is quantum computing?", h.Turns[2].Text)
}

func TestChat_AnswerCarriesRenderedHTML(t *testing.T) {
	markdown := runnerFunc(func(ctx context.Context, s *session.Session, query string, onEvent func(agent.Event)) (agent.Result, error) {
		answer := "**Qubits** don't <script>alert(1)</script>"
		onEvent(agent.Event{Kind: agent.EventDelta, Text: answer})
		onEvent(agent.Event{Kind: agent.EventAnswer, Text: answer})
		return agent.Result{Answer: answer}, nil
	})
	env := newEnv(t, markdown, Options{})

	resp := env.post(t, "/api/chat", url.Values{"message": {"q"}})
	events := sseData(t, body(t, resp))
	require.Len(t, events, 2)

	delta, answer := events[0], events[1]
	assert.Equal(t, "delta", delta["kind"])
	assert.NotContains(t, delta, "html")

	assert.Equal(t, "answer", answer["kind"])
	rendered, ok := answer["html"].(string)
	require.True(t, ok, answer)
	assert.Contains(t, rendered, "<strong>Qubits</strong>")
	assert.Contains(t, html.UnescapeString(rendered), "don't")
	assert.NotContains(t, rendered, "<script")
	assert.Equal(t, conv.MarkdownToHTML([]byte(answer["text"].(string))), rendered)
}

// sseData decodes the data line of every event in a stream.
func sseData(t *testing.T, stream string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, chunk := range strings.Split(stream, "\n\n") {
		for _, line := range strings.Split(chunk, "\n") {
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var ev map[string]any
				require.NoError(t, json.Unmarshal([]byte(data), &ev))
				out = append(out, ev)
			}
		}
	}
	return out
}

func TestChat_BusyIsConflict(t *testing.T) {
	busy := runnerFunc(func(ctx context.Context, s *session.Session, query string, onEvent func(agent.Event)) (agent.Result, error) {
		return agent.Result{}, session.ErrBusy
	})
	env := newEnv(t, busy, Options{})

	resp := env.post(t, "/api/chat", url.Values{"message": {"again"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body(t, resp), "already running")
}

func TestChat_EmptyMessage(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{})
	resp := env.post(t, "/api/chat", url.Values{"message": {"   "}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestKey_Empty(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{})
	resp := env.post(t, "/api/key", url.Values{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSharedKey(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{SharedKey: "server-key"})
	assert.True(t, env.history(t).HasKey)
}

func TestReset(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{})
	env.post(t, "/api/key", url.Values{"api_key": {"k"}})
	env.post(t, "/api/chat", url.Values{"message": {"q"}})
	require.Len(t, env.history(t).Turns, 3)

	resp := env.post(t, "/api/reset", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	h := env.history(t)
	require.Len(t, h.Turns, 1)
	assert.Equal(t, session.DefaultGreeting, h.Turns[0].Text)
	assert.True(t, h.HasKey, "reset keeps the credential")
}

func TestEnd_DestroysSession(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{})
	first := env.history(t).SessionID

	resp := env.post(t, "/api/end", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, err := env.sessions.Get(first)
	assert.ErrorIs(t, err, session.ErrNotFound)

	second := env.history(t).SessionID
	assert.NotEqual(t, first, second)
}

func TestForgedCookieIsReplaced(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{})
	u, _ := url.Parse(env.srv.URL)
	env.client.Jar.SetCookies(u, []*http.Cookie{{Name: sessionCookie, Value: "../../etc"}})

	h := env.history(t)
	assert.True(t, validID(h.SessionID))
}

func TestHealth(t *testing.T) {
	env := newEnv(t, echoRunner(), Options{})
	resp, err := env.client.Get(env.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "ok", body(t, resp))
}
