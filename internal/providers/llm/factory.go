package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/pkg/log"
)

const (
	ProviderGroq       = "groq"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderCustom     = "custom"
)

// Providers lists every supported backend name.
var Providers = []string{
	ProviderGroq, ProviderOpenAI, ProviderAnthropic,
	ProviderOpenRouter, ProviderOllama, ProviderCustom,
}

// RequiresKey reports whether a backend refuses anonymous calls.
func RequiresKey(provider string) bool {
	return provider != ProviderOllama
}

// NewProvider creates the AIProvider for one credential.
func NewProvider(ctx context.Context, cfg core.ProviderConfig, apiKey string) (core.AIProvider, error) {
	log.FromCtx(ctx).Debug().
		Str("provider", cfg.GetProvider()).
		Str("model", cfg.GetModel()).
		Msg("building llm provider")

	model, baseURL := cfg.GetModel(), cfg.GetBaseURL()

	switch cfg.GetProvider() {
	case ProviderGroq, "":
		return NewGroq(apiKey, model), nil
	case ProviderOpenAI:
		return NewOpenAI(baseURL, apiKey, model), nil
	case ProviderAnthropic:
		return NewAnthropic(baseURL, apiKey, model), nil
	case ProviderOpenRouter:
		return NewOpenRouter(apiKey, model), nil
	case ProviderOllama:
		return NewOllama(baseURL, apiKey, model), nil
	case ProviderCustom:
		if baseURL == "" {
			return nil, fmt.Errorf("custom provider needs SEARCHBOT_LLM_BASE_URL")
		}
		return NewCustomOpenAI(baseURL, apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.GetProvider())
	}
}

// Factory binds a provider config so runners can build a client per session key.
type Factory struct {
	cfg core.ProviderConfig
}

func NewFactory(cfg core.ProviderConfig) *Factory {
	return &Factory{cfg: cfg}
}

func (f *Factory) NewProvider(ctx context.Context, apiKey string) (core.AIProvider, error) {
	return NewProvider(ctx, f.cfg, apiKey)
}

func (f *Factory) RequiresKey() bool {
	return RequiresKey(f.cfg.GetProvider())
}
