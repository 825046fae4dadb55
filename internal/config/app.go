package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/searchbot/pkg/log"
)

const (
	RunnerHeuristic = "heuristic"
	RunnerAgent     = "agent"

	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	RuntimePath string `env:"SEARCHBOT_RUNTIME_PATH"`

	// Request cycle backend
	Runner        string `env:"SEARCHBOT_RUNNER" envDefault:"heuristic"`
	AgentMaxSteps int    `env:"SEARCHBOT_AGENT_MAX_STEPS" envDefault:"6"`

	// Completion provider
	Provider string `env:"SEARCHBOT_LLM_PROVIDER" envDefault:"groq"`
	Model    string `env:"SEARCHBOT_LLM_MODEL" envDefault:"llama-3.1-8b-instant"`
	BaseURL  string `env:"SEARCHBOT_LLM_BASE_URL"`
	APIKey   string `env:"SEARCHBOT_LLM_API_KEY"`
	Stream   bool   `env:"SEARCHBOT_LLM_STREAM" envDefault:"true"`

	// Context management
	ContextMaxTokens int  `env:"SEARCHBOT_CONTEXT_MAX_TOKENS" envDefault:"0"`
	SnippetMaxChars  int  `env:"SEARCHBOT_SNIPPET_MAX_CHARS" envDefault:"500"`
	LookupParallel   bool `env:"SEARCHBOT_LOOKUP_PARALLEL" envDefault:"false"`

	// Lookup adapters
	SearchTimeout    time.Duration `env:"SEARCHBOT_SEARCH_TIMEOUT" envDefault:"15s"`
	SearchMaxRetries int           `env:"SEARCHBOT_SEARCH_MAX_RETRIES" envDefault:"2"`
	WikiLang         string        `env:"SEARCHBOT_WIKI_LANG" envDefault:"en"`
	DocMaxChars      int           `env:"SEARCHBOT_DOC_MAX_CHARS" envDefault:"200"`

	// Sessions
	SessionTTL time.Duration `env:"SEARCHBOT_SESSION_TTL" envDefault:"30m"`
	Store      string        `env:"SEARCHBOT_STORE" envDefault:"memory"`

	// Transport flags
	EnableWeb      bool   `env:"SEARCHBOT_ENABLE_WEB" envDefault:"true"`
	EnableTelegram bool   `env:"SEARCHBOT_ENABLE_TELEGRAM" envDefault:"false"`
	WebAddr        string `env:"SEARCHBOT_WEB_ADDR" envDefault:":8501"`
	WebSharedKey   bool   `env:"SEARCHBOT_WEB_SHARED_KEY" envDefault:"false"`
}

// ParseAppConfig reads the environment and validates the result.
func ParseAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.RuntimePath == "" {
		c.RuntimePath = GetRuntimePath()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := ParseAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c *AppConfig) Validate() error {
	switch c.Runner {
	case RunnerHeuristic, RunnerAgent:
	default:
		return fmt.Errorf("unknown runner %q (want %s or %s)", c.Runner, RunnerHeuristic, RunnerAgent)
	}
	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreMemory, StoreSQLite)
	}
	if c.SnippetMaxChars <= 0 {
		return fmt.Errorf("snippet max chars must be positive, got %d", c.SnippetMaxChars)
	}
	if c.AgentMaxSteps <= 0 {
		return fmt.Errorf("agent max steps must be positive, got %d", c.AgentMaxSteps)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	return nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "searchbot.db")
}

func (c AppConfig) GetMCPConfigPath() string {
	return filepath.Join(c.RuntimePath, "mcp_config.json")
}

func (c AppConfig) GetPromptsPath() string {
	return filepath.Join(c.RuntimePath, "prompts.toml")
}

func (c AppConfig) GetProvider() string      { return c.Provider }
func (c AppConfig) GetModel() string         { return c.Model }
func (c AppConfig) GetBaseURL() string       { return c.BaseURL }
func (c AppConfig) GetServerAPIKey() string  { return c.APIKey }
func (c AppConfig) GetSnippetMaxChars() int  { return c.SnippetMaxChars }
func (c AppConfig) GetContextMaxTokens() int { return c.ContextMaxTokens }
func (c AppConfig) IsLookupParallel() bool   { return c.LookupParallel }
func (c AppConfig) IsStreaming() bool        { return c.Stream }
func (c AppConfig) GetAgentMaxSteps() int    { return c.AgentMaxSteps }
func (c AppConfig) GetSessionTTL() time.Duration {
	return c.SessionTTL
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
