package types

import "time"

// HistoryRecord is one stored translation.
type HistoryRecord struct {
	ID             string    `json:"id"`
	SourceText     string    `json:"sourceText"`
	TranslatedText string    `json:"translatedText"`
	Reasoning      string    `json:"reasoning,omitempty"`
	SourceLang     string    `json:"sourceLang"`
	TargetLang     string    `json:"targetLang"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	CreatedAt      time.Time `json:"createdAt"`
}
