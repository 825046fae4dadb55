package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sandevgo/searchbot/internal/core"
)

const (
	AnthropicBaseURL = "https://api.anthropic.com"
	anthropicMaxTok  = 4096
)

// Anthropic serves plain chat only. Tool definitions are dropped, so the
// function-calling runner degrades to a single answer with this provider.
type Anthropic struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropic(baseURL, apiKey, model string) *Anthropic {
	if baseURL == "" {
		baseURL = AnthropicBaseURL
	}
	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaudeSonnet4_5_20250929
	}
	return &Anthropic{
		client: anthropic.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
		),
		model: m,
	}
}

func (a *Anthropic) Chat(ctx context.Context, history []core.Message, _ []core.Tool) (core.Message, error) {
	msg, err := a.client.Messages.New(ctx, a.params(history))
	if err != nil {
		return core.Message{}, fmt.Errorf("anthropic chat: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return core.Message{Role: core.RoleAssistant, Content: text.String()}, nil
}

func (a *Anthropic) ChatStream(ctx context.Context, history []core.Message, onDelta func(string)) (core.Message, error) {
	stream := a.client.Messages.NewStreaming(ctx, a.params(history))
	defer stream.Close()

	acc := anthropic.Message{}
	var text strings.Builder
	for stream.Next() {
		event := stream.Current()
		if err := acc.Accumulate(event); err != nil {
			return core.Message{}, fmt.Errorf("anthropic accumulate: %w", err)
		}

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				text.WriteString(delta.Text)
				if onDelta != nil {
					onDelta(delta.Text)
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return core.Message{}, fmt.Errorf("anthropic stream: %w", err)
	}
	return core.Message{Role: core.RoleAssistant, Content: text.String()}, nil
}

// params folds system turns into the system prompt. Tool turns become user
// text since tools are never offered.
func (a *Anthropic) params(history []core.Message) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	messages := make([]anthropic.MessageParam, 0, len(history))

	for _, m := range history {
		switch m.Role {
		case core.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case core.RoleAssistant:
			// The API wants a user turn first, so the seed greeting is skipped.
			if m.Content == "" || len(messages) == 0 {
				continue
			}
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     a.model,
		Messages:  messages,
		MaxTokens: anthropicMaxTok,
	}
	if len(system) > 0 {
		params.System = system
	}
	return params
}

func (a *Anthropic) Models(ctx context.Context) ([]core.Model, error) {
	page, err := a.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, fmt.Errorf("list anthropic models: %w", err)
	}

	models := make([]core.Model, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, core.Model{ID: m.ID, Name: m.DisplayName})
	}
	return models, nil
}
