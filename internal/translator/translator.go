// Package translator orchestrates translations: it resolves the
// active provider, runs the streaming call, republishes progress on
// the event bus and records finished translations in history.
package translator

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/lingoflow-ai/lingoflow/internal/event"
	"github.com/lingoflow-ai/lingoflow/internal/history"
	"github.com/lingoflow-ai/lingoflow/internal/logging"
	"github.com/lingoflow-ai/lingoflow/internal/notify"
	"github.com/lingoflow-ai/lingoflow/internal/provider"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// State is the orchestrator's lifecycle state.
type State string

const (
	// StateIdle means no translation is running.
	StateIdle State = "idle"
	// StateRequesting means the request is being opened.
	StateRequesting State = "requesting"
	// StateStreaming means output is arriving.
	StateStreaming State = "streaming"
)

// Service runs at most one translation at a time. Starting a new one
// cancels the running one first, so stale output can never interleave
// with the new request's output.
type Service struct {
	registry *provider.Registry
	bus      *event.Bus
	store    *history.Store
	notifier *notify.Notifier
	cfg      *types.Config

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	currentID string
}

// New creates a Service. store and notifier may be nil.
func New(registry *provider.Registry, bus *event.Bus, store *history.Store, notifier *notify.Notifier, cfg *types.Config) *Service {
	return &Service{
		registry: registry,
		bus:      bus,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cancel aborts the running translation, if any. The aborted call
// returns ErrCancelled; its callbacks receive nothing further.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// resolve picks the provider and its effective config for one request.
// An empty providerID falls back to the configured default model
// string; an explicit modelID overrides the configured model.
func (s *Service) resolve(providerID, modelID string) (provider.Provider, types.ProviderConfig, error) {
	if providerID == "" && s.cfg != nil {
		pid, mid := provider.ParseModelString(s.cfg.Model)
		providerID = pid
		if modelID == "" {
			modelID = mid
		}
	}
	if providerID == "" {
		providerID = "openai"
	}

	p, err := s.registry.Get(providerID)
	if err != nil {
		return nil, types.ProviderConfig{}, err
	}

	var pcfg types.ProviderConfig
	if s.cfg != nil {
		pcfg = s.cfg.Provider[providerID]
	}
	if modelID != "" {
		pcfg.Model = modelID
	}
	return p, pcfg, nil
}

// Translate runs one streaming translation. providerID and modelID
// may be empty to use the configured default. Progress is delivered
// both through cb and as bus events; content and reasoning events are
// published synchronously so subscribers observe them in order.
func (s *Service) Translate(ctx context.Context, req types.TranslationRequest, providerID, modelID string, cb provider.Callbacks) (types.TranslationResult, error) {
	p, pcfg, err := s.resolve(providerID, modelID)
	if err != nil {
		if s.notifier != nil {
			s.notifier.Error("translation failed", err.Error())
		}
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return types.TranslationResult{}, err
	}

	id := ulid.Make().String()
	jobCtx := s.begin(ctx, id)
	defer s.end(id)

	s.bus.PublishSync(event.Event{
		Type: event.TranslationStarted,
		Data: event.TranslationStartedData{ID: id, Provider: p.ID(), Model: pcfg.Model},
	})

	wrapped := provider.Callbacks{
		OnContent: func(text string) {
			s.setState(id, StateStreaming)
			if cb.OnContent != nil {
				cb.OnContent(text)
			}
			s.bus.PublishSync(event.Event{
				Type: event.TranslationContent,
				Data: event.TranslationProgressData{ID: id, Text: text},
			})
		},
		OnReasoning: func(text string) {
			s.setState(id, StateStreaming)
			if cb.OnReasoning != nil {
				cb.OnReasoning(text)
			}
			s.bus.PublishSync(event.Event{
				Type: event.TranslationReasoning,
				Data: event.TranslationProgressData{ID: id, Text: text},
			})
		},
		OnDone: func(visible, reasoning string) {
			if cb.OnDone != nil {
				cb.OnDone(visible, reasoning)
			}
			s.bus.PublishSync(event.Event{
				Type: event.TranslationDone,
				Data: event.TranslationDoneData{ID: id, Text: visible, Reasoning: reasoning},
			})
		},
		OnError: func(err error) {
			if cb.OnError != nil {
				cb.OnError(err)
			}
			s.bus.PublishSync(event.Event{
				Type: event.TranslationError,
				Data: event.TranslationErrorData{ID: id, Error: err.Error()},
			})
			if s.notifier != nil {
				s.notifier.Error("translation failed", err.Error())
			}
		},
	}

	res, err := p.TranslateStream(jobCtx, req, pcfg, wrapped)
	switch {
	case err == nil:
		s.record(ctx, id, req, res, p.ID(), pcfg.Model)
	case provider.IsCancelled(err):
		s.bus.PublishSync(event.Event{
			Type: event.TranslationCancelled,
			Data: event.TranslationCancelledData{ID: id},
		})
	}
	return res, err
}

// begin registers a new job, cancelling any running one first.
func (s *Service) begin(ctx context.Context, id string) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	jobCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.currentID = id
	s.state = StateRequesting
	return jobCtx
}

// end clears the job state if id is still the current job. A job
// superseded by a newer Translate call leaves the newer state alone.
func (s *Service) end(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentID != id {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.currentID = ""
	s.state = StateIdle
}

func (s *Service) setState(id string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentID == id {
		s.state = state
	}
}

func (s *Service) record(ctx context.Context, id string, req types.TranslationRequest, res types.TranslationResult, providerID, model string) {
	if s.store == nil {
		return
	}
	rec, err := s.store.Append(ctx, types.HistoryRecord{
		ID:             id,
		SourceText:     req.SourceText,
		TranslatedText: res.Text,
		Reasoning:      res.Reasoning,
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
		Provider:       providerID,
		Model:          model,
	})
	if err != nil {
		logging.Logger.Warn().Err(err).Msg("failed to record translation in history")
		return
	}
	s.bus.Publish(event.Event{
		Type: event.HistoryAppended,
		Data: event.HistoryAppendedData{Record: rec},
	})
}

// Models lists the models of every registered provider. Listing is
// best-effort per provider, so a dead local server cannot hide the
// hosted providers' models.
func (s *Service) Models(ctx context.Context) []types.Model {
	var out []types.Model
	for _, p := range s.registry.List() {
		var pcfg types.ProviderConfig
		if s.cfg != nil {
			pcfg = s.cfg.Provider[p.ID()]
		}
		out = append(out, p.FetchModels(ctx, pcfg)...)
	}
	return out
}
