package core

import "time"

type RuntimeConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetMCPConfigPath() string
	GetPromptsPath() string
}

type ProviderConfig interface {
	GetProvider() string
	GetModel() string
	GetBaseURL() string
	GetServerAPIKey() string
}

type CycleConfig interface {
	GetSnippetMaxChars() int
	GetContextMaxTokens() int
	IsLookupParallel() bool
	IsStreaming() bool
}

// AgentConfig adds the iteration bound of the function-calling backend.
type AgentConfig interface {
	CycleConfig
	GetAgentMaxSteps() int
}

type SessionConfig interface {
	GetSessionTTL() time.Duration
}
