package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/prompt"
)

type testConfig struct {
	snippetMax int
	maxTokens  int
	parallel   bool
	stream     bool
	maxSteps   int
}

func (c testConfig) GetSnippetMaxChars() int  { return c.snippetMax }
func (c testConfig) GetContextMaxTokens() int { return c.maxTokens }
func (c testConfig) IsLookupParallel() bool   { return c.parallel }
func (c testConfig) IsStreaming() bool        { return c.stream }
func (c testConfig) GetAgentMaxSteps() int    { return c.maxSteps }

func defaultConfig() testConfig {
	return testConfig{snippetMax: 500, maxSteps: 4}
}

type staticPrompts struct{ p prompt.Prompts }

func (s staticPrompts) Get() prompt.Prompts { return s.p }

func testPrompts() staticPrompts {
	return staticPrompts{p: prompt.Prompts{
		System:    "system prompt",
		Greeting:  prompt.DefaultGreeting,
		Synthesis: "Q: {{query}}\n{{results}}",
		Agent:     "agent prompt",
	}}
}

type reply struct {
	msg core.Message
	err error
}

// scriptedAI answers Chat calls from a fixed script and records every request.
type scriptedAI struct {
	mu      sync.Mutex
	script  []reply
	calls   [][]core.Message
	tools   [][]core.Tool
	deltas  []string
	streams int
}

func (s *scriptedAI) next(history []core.Message, tools []core.Tool) (core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]core.Message(nil), history...))
	s.tools = append(s.tools, tools)
	if len(s.script) == 0 {
		return core.Message{}, errors.New("script exhausted")
	}
	r := s.script[0]
	s.script = s.script[1:]
	if r.msg.Role == "" {
		r.msg.Role = core.RoleAssistant
	}
	return r.msg, r.err
}

func (s *scriptedAI) Chat(ctx context.Context, history []core.Message, tools []core.Tool) (core.Message, error) {
	return s.next(history, tools)
}

func (s *scriptedAI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// streamingAI splits the scripted content into two fragments.
type streamingAI struct {
	*scriptedAI
}

func (s streamingAI) ChatStream(ctx context.Context, history []core.Message, onDelta func(string)) (core.Message, error) {
	s.mu.Lock()
	s.streams++
	s.mu.Unlock()
	msg, err := s.next(history, nil)
	if err != nil {
		return msg, err
	}
	half := len(msg.Content) / 2
	onDelta(msg.Content[:half])
	onDelta(msg.Content[half:])
	return msg, nil
}

type fakeFactory struct {
	ai          core.AIProvider
	err         error
	requiresKey bool
	keys        []string
}

func (f *fakeFactory) NewProvider(ctx context.Context, apiKey string) (core.AIProvider, error) {
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return f.ai, nil
}

func (f *fakeFactory) RequiresKey() bool { return f.requiresKey }

type fakeLookup struct {
	mu    sync.Mutex
	name  string
	out   string
	err   error
	delay time.Duration
	got   []string
}

func (f *fakeLookup) Name() string { return f.name }

func (f *fakeLookup) Lookup(ctx context.Context, query string) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.got = append(f.got, query)
	f.mu.Unlock()
	return f.out, f.err
}

func (f *fakeLookup) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.got...)
}

type fakeLookups struct {
	paper, wiki, web *fakeLookup
}

func newFakeLookups() fakeLookups {
	return fakeLookups{
		paper: &fakeLookup{name: "Arxiv", out: "Published: 2020-01-01\nTitle: Qubits"},
		wiki:  &fakeLookup{name: "Wikipedia", out: "Page: Quantum computing\nSummary: A quantum computer exploits superposition."},
		web:   &fakeLookup{name: "DuckDuckGo Search", out: "Quantum computing news."},
	}
}

func (f fakeLookups) asMap() map[core.ToolID]core.Lookup {
	return map[core.ToolID]core.Lookup{
		core.PaperSearch:        f.paper,
		core.EncyclopediaSearch: f.wiki,
		core.WebSearch:          f.web,
	}
}

type fakeToolServer struct {
	tools []core.Tool
	out   map[string]string
	err   map[string]error
	calls []string
}

func (f *fakeToolServer) GetTools(ctx context.Context) ([]core.Tool, error) {
	return f.tools, nil
}

func (f *fakeToolServer) CallTool(ctx context.Context, name string, args string) (string, error) {
	f.calls = append(f.calls, name+" "+args)
	if err, ok := f.err[name]; ok {
		return "", err
	}
	if out, ok := f.out[name]; ok {
		return out, nil
	}
	return "", errors.New("tool not found: " + name)
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) add(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) kinds(kind EventKind) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, ev := range l.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
