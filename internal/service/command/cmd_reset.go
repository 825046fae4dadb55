package command

import (
	"context"
	"errors"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/session"
)

type ResetCommand struct {
	sessions  Sessions
	formatter *ResponseFormatter
}

func NewResetCommand(sessions Sessions) core.Command {
	return &ResetCommand{
		sessions:  sessions,
		formatter: NewResponseFormatter(),
	}
}

func (c *ResetCommand) Name() string {
	return "reset"
}

func (c *ResetCommand) Description() string {
	return "Clear the conversation and start over"
}

func (c *ResetCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	err := c.sessions.Reset(ctx, sessionID)
	switch {
	case errors.Is(err, session.ErrBusy):
		return "", errors.New("wait for the current answer before resetting")
	case errors.Is(err, session.ErrNotFound):
		// nothing to clear yet
	case err != nil:
		return "", err
	}
	return c.formatter.Success("Conversation cleared"), nil
}
