package event

import "github.com/lingoflow-ai/lingoflow/pkg/types"

// TranslationStartedData is the payload of translation.started.
type TranslationStartedData struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// TranslationProgressData is the payload of translation.content and
// translation.reasoning. Text carries the accumulated value so far.
type TranslationProgressData struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// TranslationDoneData is the payload of translation.done.
type TranslationDoneData struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Reasoning string `json:"reasoning,omitempty"`
}

// TranslationErrorData is the payload of translation.error.
type TranslationErrorData struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// TranslationCancelledData is the payload of translation.cancelled.
type TranslationCancelledData struct {
	ID string `json:"id"`
}

// HistoryAppendedData is the payload of history.appended.
type HistoryAppendedData struct {
	Record types.HistoryRecord `json:"record"`
}

// HistoryRemovedData is the payload of history.removed. An empty ID
// means the whole history was cleared.
type HistoryRemovedData struct {
	ID string `json:"id,omitempty"`
}

// SettingsChangedData is the payload of settings.changed.
type SettingsChangedData struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// NotificationData is the payload of notification events.
type NotificationData struct {
	Level   string `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
