package agent

import (
	"context"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/pkg/conv"
	"github.com/sandevgo/searchbot/pkg/log"
)

// Executor runs the tool calls of one model reply. Failures become
// "Error: ..." observations so the model can react to them.
type Executor struct {
	tools    core.ToolServer
	maxChars int
}

func NewExecutor(tools core.ToolServer, maxChars int) *Executor {
	return &Executor{
		tools:    tools,
		maxChars: maxChars,
	}
}

func (e *Executor) Execute(ctx context.Context, toolCalls []core.ToolCall, onEvent func(Event)) ([]core.Message, []Step) {
	msgs := make([]core.Message, 0, len(toolCalls))
	steps := make([]Step, 0, len(toolCalls))

	for _, tc := range toolCalls {
		name := tc.Function.Name
		emit(onEvent, Event{Kind: EventToolStart, Tool: name, Text: "Now calling " + name + "..."})

		step := Step{Tool: name, Input: tc.Function.Arguments}
		res, err := e.tools.CallTool(ctx, name, tc.Function.Arguments)
		if err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("tool", name).Msg("tool call failed")
			res = errorAnswer(err)
			step.Failed = true
		}
		step.Observation = conv.Truncate(res, e.maxChars)
		steps = append(steps, step)

		emit(onEvent, Event{Kind: EventToolResult, Tool: name, Text: step.Observation, Failed: step.Failed})
		msgs = append(msgs, core.Message{
			Role:       core.RoleTool,
			Content:    step.Observation,
			ToolCallID: tc.ID,
		})
	}
	return msgs, steps
}
