// Package provider implements the adapters that translate one
// provider's wire protocol into the normalized streaming callback
// model, and the registry that dispatches to them.
package provider

import (
	"context"
	"strings"

	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// Callbacks receives normalized events from a streaming translation.
// OnContent and OnReasoning are always invoked with the accumulated
// text so far, never a bare delta; each successive value is a prefix
// extension of the previous one, so callers can simply replace what
// they previously displayed. Any field may be nil.
type Callbacks struct {
	OnContent   func(accumulated string)
	OnReasoning func(accumulated string)

	// OnDone is invoked exactly once on success with the terminal
	// visible and reasoning text.
	OnDone func(visible, reasoning string)

	// OnError is invoked exactly once on failure. Cancellation is not
	// a failure and is never delivered here.
	OnError func(err error)
}

func (c Callbacks) content(s string) {
	if c.OnContent != nil {
		c.OnContent(s)
	}
}

func (c Callbacks) reasoning(s string) {
	if c.OnReasoning != nil {
		c.OnReasoning(s)
	}
}

func (c Callbacks) done(visible, reasoning string) {
	if c.OnDone != nil {
		c.OnDone(visible, reasoning)
	}
}

// fail reports err through OnError unless it is a cancellation, and
// returns it for the call's error path.
func (c Callbacks) fail(err error) error {
	if !IsCancelled(err) && c.OnError != nil {
		c.OnError(err)
	}
	return err
}

// Provider is one translation backend.
type Provider interface {
	// ID returns the provider identifier used by the registry.
	ID() string

	// Name returns the human-readable provider name.
	Name() string

	// Translate performs a non-streaming translation.
	Translate(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig) (types.TranslationResult, error)

	// TranslateStream performs a streaming translation, reporting
	// progress through cb. The returned result equals the terminal
	// OnDone values.
	TranslateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb Callbacks) (types.TranslationResult, error)

	// FetchModels lists the provider's models. It is best-effort: on
	// any network or parse failure it returns the provider's static
	// fallback list instead of an error, so model discovery can never
	// block translation with a manually typed model name.
	FetchModels(ctx context.Context, cfg types.ProviderConfig) []types.Model
}

// ParseModelString parses the "provider/model" config format.
func ParseModelString(s string) (providerID, modelID string) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", s
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

func baseOrDefault(base, fallback string) string {
	if base != "" {
		return base
	}
	return fallback
}

// joinReasoning merges protocol-level and tag-extracted reasoning.
// Models emit one or the other; if both are present they are kept in
// arrival order.
func joinReasoning(native, extracted string) string {
	switch {
	case native == "":
		return extracted
	case extracted == "":
		return native
	default:
		return native + "\n" + extracted
	}
}
