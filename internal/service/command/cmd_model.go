package command

import (
	"context"

	"github.com/sandevgo/searchbot/internal/core"
)

// ModelCommand reports the configured completion provider. Changing it
// requires editing .env and restarting.
type ModelCommand struct {
	cfg       core.ProviderConfig
	formatter *ResponseFormatter
}

func NewModelCommand(cfg core.ProviderConfig) core.Command {
	return &ModelCommand{
		cfg:       cfg,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show the current completion model"
}

func (c *ModelCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	return c.formatter.Combine(
		c.formatter.Info("Current Model"),
		c.formatter.Label("Provider", c.cfg.GetProvider()),
		c.formatter.Label("Model", c.cfg.GetModel()),
		c.formatter.Tip("Set SEARCHBOT_LLM_PROVIDER and SEARCHBOT_LLM_MODEL in .env to change it"),
	), nil
}
