package installer

import "github.com/sandevgo/searchbot/internal/providers/llm"

const (
	keyProvider       = "SEARCHBOT_LLM_PROVIDER"
	keyAPIKey         = "SEARCHBOT_LLM_API_KEY"
	keyBaseURL        = "SEARCHBOT_LLM_BASE_URL"
	keyModel          = "SEARCHBOT_LLM_MODEL"
	keyEnableWeb      = "SEARCHBOT_ENABLE_WEB"
	keyEnableTelegram = "SEARCHBOT_ENABLE_TELEGRAM"
	keyTelegramToken  = "SEARCHBOT_TELEGRAM_TOKEN"
	keyTelegramOwner  = "SEARCHBOT_TELEGRAM_OWNER_ID"
	keyStore          = "SEARCHBOT_STORE"
	keyDebug          = "SEARCHBOT_DEBUG"
)

// defaultModels is used when the model list cannot be fetched.
var defaultModels = map[string]string{
	llm.ProviderGroq:       "llama-3.1-8b-instant",
	llm.ProviderOpenAI:     "gpt-4o-mini",
	llm.ProviderAnthropic:  "claude-3-5-haiku-latest",
	llm.ProviderOpenRouter: "meta-llama/llama-3.1-8b-instruct",
	llm.ProviderOllama:     "llama3.1",
}

type InstallState struct {
	RuntimePath string
	EnvVars     map[string]string
}

func NewInstallState(runtimePath string) *InstallState {
	return &InstallState{
		RuntimePath: runtimePath,
		EnvVars:     make(map[string]string),
	}
}

func (s *InstallState) provider() string {
	return s.EnvVars[keyProvider]
}

func (s *InstallState) telegramEnabled() bool {
	return s.EnvVars[keyEnableTelegram] == "true"
}
