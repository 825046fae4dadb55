package agent

import (
	"context"
	"fmt"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/pkg/log"
	"github.com/sandevgo/searchbot/pkg/tokens"
)

var _ Runner = (*ToolAgent)(nil)

// ToolAgent lets the model pick tools itself through function calling.
// Tool messages live only inside the cycle; the conversation only receives
// the final answer.
type ToolAgent struct {
	cfg       core.AgentConfig
	providers core.ProviderFactory
	tools     core.ToolServer
	prompts   PromptSource
	counter   *tokens.Counter
	executor  *Executor
}

func NewToolAgent(
	cfg core.AgentConfig,
	providers core.ProviderFactory,
	tools core.ToolServer,
	prompts PromptSource,
	counter *tokens.Counter,
) *ToolAgent {
	if counter == nil {
		counter = tokens.NewEstimator()
	}
	return &ToolAgent{
		cfg:       cfg,
		providers: providers,
		tools:     tools,
		prompts:   prompts,
		counter:   counter,
		executor:  NewExecutor(tools, cfg.GetSnippetMaxChars()),
	}
}

func (a *ToolAgent) Run(ctx context.Context, s *session.Session, query string, onEvent func(Event)) (Result, error) {
	ctx = log.WithSession(ctx, s.ID)
	logger := log.FromCtx(ctx)

	ai, release, err := open(ctx, s, query, a.providers, onEvent)
	if release == nil {
		return Result{}, err
	}
	defer release()

	res := Result{}
	if err == nil {
		res.Answer, res.Trace, err = a.loop(ctx, ai, s, onEvent)
	}
	if err != nil {
		logger.Error().Err(err).Msg("agent cycle failed")
		res.Answer = errorAnswer(err)
	}

	finish(ctx, s, res.Answer, onEvent)
	return res, nil
}

func (a *ToolAgent) loop(ctx context.Context, ai core.AIProvider, s *session.Session, onEvent func(Event)) (string, []Step, error) {
	logger := log.FromCtx(ctx)

	tools, err := a.tools.GetTools(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get tools: %w", err)
	}

	p := a.prompts.Get()
	msgs := buildContext(ctx, p.Agent, s.Turns(), a.cfg.GetContextMaxTokens(), a.counter)

	var (
		trace []Step
		last  string
	)
	maxSteps := a.cfg.GetAgentMaxSteps()
	for step := 0; step < maxSteps; step++ {
		emit(onEvent, Event{Kind: EventStatus, Text: "Thinking..."})

		reply, err := ai.Chat(ctx, sanitizeToolCalls(ctx, msgs), tools)
		if err != nil {
			return "", trace, err
		}
		if reply.Content != "" {
			last = reply.Content
		}
		if len(reply.ToolCalls) == 0 {
			return reply.Content, trace, nil
		}

		logger.Debug().Int("step", step).Int("calls", len(reply.ToolCalls)).Msg("model requested tools")

		observations, steps := a.executor.Execute(ctx, reply.ToolCalls, onEvent)
		trace = append(trace, steps...)
		msgs = append(msgs, reply)
		msgs = append(msgs, observations...)
	}

	if last != "" {
		return last, trace, nil
	}
	return "", trace, fmt.Errorf("no answer after %d steps", maxSteps)
}
