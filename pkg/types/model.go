package types

// Model describes a model offered by a provider.
type Model struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	ProviderID string `json:"providerID"`

	// SupportsReasoning is true when the provider's protocol delivers
	// reasoning as a distinct delta type for this model.
	SupportsReasoning bool `json:"supportsReasoning,omitempty"`
}
