package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandevgo/searchbot/internal/core"
)

const (
	defaultHistoryTurns = 10
	historyPreviewChars = 160
)

type HistoryCommand struct {
	sessions  Sessions
	formatter *ResponseFormatter
}

func NewHistoryCommand(sessions Sessions) core.Command {
	return &HistoryCommand{
		sessions:  sessions,
		formatter: NewResponseFormatter(),
	}
}

func (c *HistoryCommand) Name() string {
	return "history"
}

func (c *HistoryCommand) Description() string {
	return "Show the latest turns of this conversation"
}

func (c *HistoryCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	limit := defaultHistoryTurns
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "", fmt.Errorf("invalid turn count %q", args[0])
		}
		limit = n
	}

	s, err := c.sessions.Get(sessionID)
	if err != nil {
		return c.formatter.Combine(
			c.formatter.Info("History"),
			"No conversation yet.",
		), nil
	}

	turns := s.Turns()
	total := len(turns)
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, c.formatter.Turn(t, historyPreviewChars))
	}

	return c.formatter.Combine(
		c.formatter.Info("History"),
		c.formatter.Label("Turns", fmt.Sprintf("%d of %d", len(turns), total)),
		c.formatter.List(lines),
	), nil
}
