package types

// TranslationRequest describes one translation to perform.
type TranslationRequest struct {
	SourceText string `json:"sourceText"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`

	// SystemPrompt is sent as the system message. Empty selects the
	// built-in default.
	SystemPrompt string `json:"systemPrompt,omitempty"`

	// UserPromptTemplate is the user message template. Placeholders
	// {source_lang}, {target_lang} and {text} are substituted
	// textually (case-sensitive, non-recursive) before sending.
	UserPromptTemplate string `json:"userPromptTemplate,omitempty"`
}

// TranslationResult is the final outcome of one translation.
type TranslationResult struct {
	Text      string `json:"text"`
	Reasoning string `json:"reasoning,omitempty"`
}
