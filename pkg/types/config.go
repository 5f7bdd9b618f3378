// Package types contains the shared data types for LingoFlow.
package types

// Config represents the LingoFlow configuration.
type Config struct {
	// Schema reference (for editor support)
	Schema string `json:"$schema,omitempty"`

	// Default provider/model selection, "provider/model" format
	// (e.g. "openai/gpt-4o-mini" or "ollama/llama3.1").
	Model string `json:"model,omitempty"`

	// Theme for UI frontends ("light"|"dark"|"system").
	Theme string `json:"theme,omitempty"`

	// HistoryLimit bounds the translation history; oldest records are
	// evicted beyond this count. 0 means the default (200).
	HistoryLimit int `json:"historyLimit,omitempty"`

	// SystemPrompt overrides the built-in translation system prompt.
	SystemPrompt string `json:"systemPrompt,omitempty"`

	// UserPromptTemplate overrides the built-in user prompt template.
	// Supports {source_lang}, {target_lang} and {text} placeholders.
	UserPromptTemplate string `json:"userPromptTemplate,omitempty"`

	// Provider configs keyed by provider ID.
	Provider map[string]ProviderConfig `json:"provider,omitempty"`
}

// ProviderConfig holds the per-provider endpoint, credential, model and
// sampling configuration. It is immutable for the duration of one
// translation call.
type ProviderConfig struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseURL,omitempty"`
	Model   string `json:"model,omitempty"`

	// Params holds sampling parameters passed through to the provider
	// (e.g. "temperature", "top_p", "max_tokens").
	Params map[string]float64 `json:"params,omitempty"`

	// Disable removes the provider from the registry.
	Disable bool `json:"disable,omitempty"`
}

// Param returns the named sampling parameter and whether it is set.
func (c ProviderConfig) Param(name string) (float64, bool) {
	v, ok := c.Params[name]
	return v, ok
}
