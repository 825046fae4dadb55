package agent

import (
	"context"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/pkg/log"
	"github.com/sandevgo/searchbot/pkg/tokens"
)

// buildContext turns the conversation into model messages behind the system
// prompt. With maxTokens > 0 the oldest turns after the seed are left out
// until the rest fits; the seed and the newest turn are always sent. The
// conversation itself is never modified.
func buildContext(ctx context.Context, system string, turns []session.Turn, maxTokens int, counter *tokens.Counter) []core.Message {
	msgs := make([]core.Message, 0, len(turns)+1)
	if system != "" {
		msgs = append(msgs, core.Message{Role: core.RoleSystem, Content: system})
	}

	start := 1
	if maxTokens > 0 && len(turns) > 2 {
		total := counter.Count(system)
		for _, t := range turns {
			total += counter.Count(t.Text)
		}
		for total > maxTokens && start < len(turns)-1 {
			total -= counter.Count(turns[start].Text)
			start++
		}
		if start > 1 {
			log.FromCtx(ctx).Debug().
				Int("dropped", start-1).
				Int("tokens", total).
				Msg("trimmed model context")
		}
	}

	for i, t := range turns {
		if i > 0 && i < start {
			continue
		}
		msgs = append(msgs, core.Message{Role: t.Role, Content: t.Text})
	}
	return msgs
}

// sanitizeToolCalls drops tool messages that do not answer a call of the
// preceding assistant message. Providers reject such transcripts.
func sanitizeToolCalls(ctx context.Context, msgs []core.Message) []core.Message {
	var out []core.Message
	pending := map[string]struct{}{}

	for _, m := range msgs {
		switch m.Role {
		case core.RoleTool:
			if _, ok := pending[m.ToolCallID]; !ok {
				log.FromCtx(ctx).Debug().Str("tool_call_id", m.ToolCallID).Msg("dropping orphaned tool message")
				continue
			}
			delete(pending, m.ToolCallID)
		case core.RoleAssistant:
			pending = make(map[string]struct{}, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				pending[tc.ID] = struct{}{}
			}
		default:
			pending = map[string]struct{}{}
		}
		out = append(out, m)
	}
	return out
}
