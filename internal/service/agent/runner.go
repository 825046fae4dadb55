package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/prompt"
	"github.com/sandevgo/searchbot/internal/service/session"
)

// ErrMissingCredential aborts a cycle before any model call. The user turn
// is kept; no assistant turn is added.
var ErrMissingCredential = errors.New("missing completion API key: enter your API key to start chatting")

type EventKind string

const (
	EventStatus     EventKind = "status"
	EventToolStart  EventKind = "tool_start"
	EventToolResult EventKind = "tool_result"
	EventDelta      EventKind = "delta"
	EventAnswer     EventKind = "answer"
	EventError      EventKind = "error"
)

// Event is what transports render while a cycle runs.
type Event struct {
	Kind   EventKind `json:"kind"`
	Tool   string    `json:"tool,omitempty"`
	Text   string    `json:"text"`
	Failed bool      `json:"failed,omitempty"`
}

// Step is one tool invocation of a cycle.
type Step struct {
	Tool        string `json:"tool"`
	Input       string `json:"input"`
	Observation string `json:"observation"`
	Failed      bool   `json:"failed,omitempty"`
}

// Result is the outcome of one cycle. Only Answer reaches the conversation.
type Result struct {
	Answer string `json:"answer"`
	Draft  string `json:"draft,omitempty"`
	Trace  []Step `json:"trace,omitempty"`
}

// Runner turns one user query into one assistant answer for a session.
type Runner interface {
	Run(ctx context.Context, s *session.Session, query string, onEvent func(Event)) (Result, error)
}

// PromptSource provides the current prompts; *prompt.Store satisfies it.
type PromptSource interface {
	Get() prompt.Prompts
}

func emit(onEvent func(Event), ev Event) {
	if onEvent != nil {
		onEvent(ev)
	}
}

// open takes the session lock, records the user turn and builds a completion
// client for the session credential.
func open(ctx context.Context, s *session.Session, query string, factory core.ProviderFactory, onEvent func(Event)) (core.AIProvider, func(), error) {
	release, err := s.Begin()
	if err != nil {
		return nil, nil, err
	}

	s.AppendTurn(ctx, core.RoleUser, query)

	key := s.APIKey()
	if factory.RequiresKey() && key == "" {
		release()
		emit(onEvent, Event{Kind: EventError, Text: ErrMissingCredential.Error()})
		return nil, nil, ErrMissingCredential
	}

	ai, err := factory.NewProvider(ctx, key)
	if err != nil {
		// reported like any other completion failure
		return nil, release, fmt.Errorf("failed to create provider: %w", err)
	}
	return ai, release, nil
}

// finish appends the answer turn and reports it.
func finish(ctx context.Context, s *session.Session, answer string, onEvent func(Event)) {
	s.AppendTurn(ctx, core.RoleAssistant, answer)
	emit(onEvent, Event{Kind: EventAnswer, Text: answer})
}

func errorAnswer(err error) string {
	return "Error: " + err.Error()
}
