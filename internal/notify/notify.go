// Package notify raises user-facing notifications by publishing them
// on the event bus and mirroring them to the log.
package notify

import (
	"github.com/lingoflow-ai/lingoflow/internal/event"
	"github.com/lingoflow-ai/lingoflow/internal/logging"
)

// Level classifies a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notifier publishes notifications.
type Notifier struct {
	bus *event.Bus
}

// New creates a Notifier publishing on bus.
func New(bus *event.Bus) *Notifier {
	return &Notifier{bus: bus}
}

// Info raises an informational notification.
func (n *Notifier) Info(title, message string) {
	n.send(LevelInfo, title, message)
}

// Warn raises a warning notification.
func (n *Notifier) Warn(title, message string) {
	n.send(LevelWarn, title, message)
}

// Error raises an error notification.
func (n *Notifier) Error(title, message string) {
	n.send(LevelError, title, message)
}

func (n *Notifier) send(level Level, title, message string) {
	switch level {
	case LevelError:
		logging.Logger.Error().Str("title", title).Msg(message)
	case LevelWarn:
		logging.Logger.Warn().Str("title", title).Msg(message)
	default:
		logging.Logger.Info().Str("title", title).Msg(message)
	}

	if n.bus == nil {
		return
	}
	n.bus.Publish(event.Event{
		Type: event.Notification,
		Data: event.NotificationData{
			Level:   string(level),
			Title:   title,
			Message: message,
		},
	})
}
