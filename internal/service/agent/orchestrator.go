package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/iter"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/dispatch"
	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/pkg/conv"
	"github.com/sandevgo/searchbot/pkg/log"
	"github.com/sandevgo/searchbot/pkg/tokens"
)

var _ Runner = (*Orchestrator)(nil)

// Orchestrator runs the keyword-dispatched cycle: draft, lookups picked from
// the draft, synthesis over the snippets.
type Orchestrator struct {
	cfg       core.CycleConfig
	providers core.ProviderFactory
	lookups   map[core.ToolID]core.Lookup
	prompts   PromptSource
	counter   *tokens.Counter
}

func NewOrchestrator(
	cfg core.CycleConfig,
	providers core.ProviderFactory,
	lookups map[core.ToolID]core.Lookup,
	prompts PromptSource,
	counter *tokens.Counter,
) *Orchestrator {
	if counter == nil {
		counter = tokens.NewEstimator()
	}
	return &Orchestrator{
		cfg:       cfg,
		providers: providers,
		lookups:   lookups,
		prompts:   prompts,
		counter:   counter,
	}
}

func (o *Orchestrator) Run(ctx context.Context, s *session.Session, query string, onEvent func(Event)) (Result, error) {
	ctx = log.WithSession(ctx, s.ID)
	logger := log.FromCtx(ctx)

	ai, release, err := open(ctx, s, query, o.providers, onEvent)
	if release == nil {
		return Result{}, err
	}
	defer release()
	if err != nil {
		logger.Error().Err(err).Msg("completion client unavailable")
		answer := errorAnswer(err)
		finish(ctx, s, answer, onEvent)
		return Result{Answer: answer}, nil
	}

	p := o.prompts.Get()

	emit(onEvent, Event{Kind: EventStatus, Text: "Thinking..."})
	history := buildContext(ctx, p.System, s.Turns(), o.cfg.GetContextMaxTokens(), o.counter)
	logger.Debug().Int("messages", len(history)).Msg("requesting draft")

	draftMsg, err := ai.Chat(ctx, history, nil)
	if err != nil {
		logger.Error().Err(err).Msg("draft failed")
		answer := errorAnswer(err)
		finish(ctx, s, answer, onEvent)
		return Result{Answer: answer}, nil
	}
	draft := draftMsg.Content

	selected := dispatch.Select(draft, query)
	logger.Debug().Interface("tools", selected).Msg("tools selected")

	results := o.lookup(ctx, selected, query, onEvent)
	res := Result{Draft: draft, Trace: make([]Step, 0, len(results))}
	for _, r := range results {
		res.Trace = append(res.Trace, Step{Tool: r.Source, Input: query, Observation: r.Snippet, Failed: r.Failed})
	}

	answer := draft
	if len(results) > 0 {
		synth, err := o.synthesize(ctx, ai, p.System, p.Render(query, formatResults(results)), onEvent)
		switch {
		case err != nil:
			logger.Error().Err(err).Msg("synthesis failed, answering with draft")
		case strings.TrimSpace(synth) == "":
			logger.Error().Msg("synthesis was empty, answering with draft")
		default:
			answer = synth
		}
	}

	res.Answer = answer
	finish(ctx, s, answer, onEvent)
	return res, nil
}

// lookup invokes the selected adapters with the original query. Results keep
// the dispatch order whether or not the calls ran concurrently.
func (o *Orchestrator) lookup(ctx context.Context, selected []core.ToolID, query string, onEvent func(Event)) []core.ToolResult {
	run := func(id *core.ToolID) core.ToolResult {
		return o.lookupOne(ctx, *id, query, onEvent)
	}

	if o.cfg.IsLookupParallel() {
		return iter.Map(selected, run)
	}

	results := make([]core.ToolResult, 0, len(selected))
	for i := range selected {
		results = append(results, run(&selected[i]))
	}
	return results
}

func (o *Orchestrator) lookupOne(ctx context.Context, id core.ToolID, query string, onEvent func(Event)) core.ToolResult {
	lookup, ok := o.lookups[id]
	if !ok {
		r := core.ToolResult{Source: string(id), Snippet: "Error: tool is not configured", Failed: true}
		emit(onEvent, Event{Kind: EventToolResult, Tool: r.Source, Text: r.Snippet, Failed: true})
		return r
	}

	name := lookup.Name()
	emit(onEvent, Event{Kind: EventToolStart, Tool: name, Text: fmt.Sprintf("Now searching %s...", name)})

	out, err := lookup.Lookup(ctx, query)
	r := core.ToolResult{Source: name}
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("tool", name).Msg("lookup failed")
		r.Snippet = conv.Truncate(errorAnswer(err), o.cfg.GetSnippetMaxChars())
		r.Failed = true
	} else {
		r.Snippet = conv.Truncate(out, o.cfg.GetSnippetMaxChars())
	}

	emit(onEvent, Event{Kind: EventToolResult, Tool: name, Text: r.Snippet, Failed: r.Failed})
	return r
}

func (o *Orchestrator) synthesize(ctx context.Context, ai core.AIProvider, system, prompt string, onEvent func(Event)) (string, error) {
	msgs := []core.Message{{Role: core.RoleUser, Content: prompt}}
	if system != "" {
		msgs = append([]core.Message{{Role: core.RoleSystem, Content: system}}, msgs...)
	}
	log.FromCtx(ctx).Debug().Int("tokens", o.counter.Count(prompt)).Msg("requesting synthesis")

	emit(onEvent, Event{Kind: EventStatus, Text: "Writing answer..."})

	if sp, ok := ai.(core.StreamingProvider); ok && o.cfg.IsStreaming() {
		msg, err := sp.ChatStream(ctx, msgs, func(delta string) {
			emit(onEvent, Event{Kind: EventDelta, Text: delta})
		})
		if err != nil {
			return "", err
		}
		return msg.Content, nil
	}

	msg, err := ai.Chat(ctx, msgs, nil)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func formatResults(results []core.ToolResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("[%s]\n%s", r.Source, r.Snippet))
	}
	return strings.Join(parts, "\n\n")
}
