package core

import "context"

// AIProvider is the completion client boundary.
type AIProvider interface {
	Chat(ctx context.Context, history []Message, tools []Tool) (Message, error)
}

// StreamingProvider delivers the answer as fragments; the returned Message holds the full text.
type StreamingProvider interface {
	AIProvider
	ChatStream(ctx context.Context, history []Message, onDelta func(string)) (Message, error)
}

// ModelCatalog lists models a provider can serve. Used by the installer.
type ModelCatalog interface {
	Models(ctx context.Context) ([]Model, error)
}

// ProviderFactory builds a completion client for one session credential.
type ProviderFactory interface {
	NewProvider(ctx context.Context, apiKey string) (AIProvider, error)
	RequiresKey() bool
}

// Lookup is a read-only query-in / text-out tool adapter.
type Lookup interface {
	Name() string
	Lookup(ctx context.Context, query string) (string, error)
}

// ToolServer exposes function tools to the agent backend.
type ToolServer interface {
	GetTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, name string, args string) (string, error)
}
