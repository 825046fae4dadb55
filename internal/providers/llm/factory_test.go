package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerCfg struct {
	provider, model, baseURL string
}

func (c providerCfg) GetProvider() string     { return c.provider }
func (c providerCfg) GetModel() string        { return c.model }
func (c providerCfg) GetBaseURL() string      { return c.baseURL }
func (c providerCfg) GetServerAPIKey() string { return "" }

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     providerCfg
		want    any
		wantErr string
	}{
		{name: "groq default", cfg: providerCfg{provider: "groq", model: "m"}, want: &OpenAICompatible{}},
		{name: "empty means groq", cfg: providerCfg{model: "m"}, want: &OpenAICompatible{}},
		{name: "openai", cfg: providerCfg{provider: "openai"}, want: &OpenAI{}},
		{name: "anthropic", cfg: providerCfg{provider: "anthropic"}, want: &Anthropic{}},
		{name: "openrouter", cfg: providerCfg{provider: "openrouter"}, want: &OpenAICompatible{}},
		{name: "ollama", cfg: providerCfg{provider: "ollama"}, want: &Ollama{}},
		{name: "custom", cfg: providerCfg{provider: "custom", baseURL: "http://x"}, want: &OpenAICompatible{}},
		{name: "custom without url", cfg: providerCfg{provider: "custom"}, wantErr: "BASE_URL"},
		{name: "unknown", cfg: providerCfg{provider: "bard"}, wantErr: "unknown llm provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(ctx, tt.cfg, "key")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestGroqBaseURL(t *testing.T) {
	p := NewGroq("k", "llama-3.1-8b-instant")
	assert.Equal(t, GroqBaseURL, p.baseURL)
	assert.Equal(t, "llama-3.1-8b-instant", p.model)
}

func TestFactory_RequiresKey(t *testing.T) {
	assert.True(t, NewFactory(providerCfg{provider: "groq"}).RequiresKey())
	assert.False(t, NewFactory(providerCfg{provider: "ollama"}).RequiresKey())
}
