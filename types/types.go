package types

// ProviderType identifies an LLM backend implementation
type ProviderType string

const (
	ProviderOllama ProviderType = "ollama"
	ProviderOpenAI ProviderType = "openai"
	ProviderStatic ProviderType = "static"
)

// ProviderConfig holds settings shared by all provider implementations
type ProviderConfig struct {
	Provider    ProviderType `json:"provider"`
	URL         string       `json:"url"`
	Model       string       `json:"model"`
	Temperature float64      `json:"temperature"`
	TopP        float64      `json:"top_p"`
	MaxTokens   int          `json:"max_tokens"`
	// CredentialName names the environment variable holding the API key,
	// overriding the endpoint-based lookup
	CredentialName string `json:"credential_name"`
	// SimulatedResponse short-circuits the network call; used by the
	// headless harness and tests
	SimulatedResponse string `json:"simulated_response"`
}

// Default provider settings, matching the stock Ollama setup
const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultModel       = "qwen2.5-coder:14b"
	DefaultOpenAIModel = "gpt-4.1-mini"
	DefaultTemperature = 0
	DefaultTopP        = 0.95
	DefaultMaxTokens   = 5000
)

// DefaultContextLines is how many unchanged lines above and below the edit
// range are sent to the model as preamble and postamble
const DefaultContextLines = 10

// EditRequest describes one range-edit operation against a buffer
type EditRequest struct {
	// Instruction is the user's natural-language request
	Instruction string
	// FirstLine and LastLine bound the range to rewrite, 1-indexed inclusive
	FirstLine int
	LastLine  int
	// FileType is the editor filetype, used to tag the code block
	FileType string
	// ContextLines overrides DefaultContextLines when positive
	ContextLines int
	// InlineDiff selects grouped/overlay application; false applies the
	// proposal directly with no review step
	InlineDiff bool
}
