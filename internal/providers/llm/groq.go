package llm

const GroqBaseURL = "https://api.groq.com/openai"

// NewGroq returns the default provider. Groq serves the Llama family over the
// OpenAI-compatible API.
func NewGroq(apiKey, model string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:    GroqBaseURL,
		APIKey:     apiKey,
		Model:      model,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
	})
}
