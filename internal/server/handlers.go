package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lingoflow-ai/lingoflow/internal/provider"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// translateRequest is the body of POST /translate.
type translateRequest struct {
	Text               string `json:"text"`
	SourceLang         string `json:"sourceLang"`
	TargetLang         string `json:"targetLang"`
	Provider           string `json:"provider,omitempty"`
	Model              string `json:"model,omitempty"`
	SystemPrompt       string `json:"systemPrompt,omitempty"`
	UserPromptTemplate string `json:"userPromptTemplate,omitempty"`
}

// translate runs a streaming translation, emitting progress as SSE
// events on the response: content and reasoning carry the accumulated
// text so far, followed by exactly one of done, error or cancelled.
func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "text is required")
		return
	}
	if req.TargetLang == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "targetLang is required")
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	sse.begin()

	treq := types.TranslationRequest{
		SourceText:         req.Text,
		SourceLang:         req.SourceLang,
		TargetLang:         req.TargetLang,
		SystemPrompt:       req.SystemPrompt,
		UserPromptTemplate: req.UserPromptTemplate,
	}

	_, err = s.translator.Translate(r.Context(), treq, req.Provider, req.Model, provider.Callbacks{
		OnContent: func(text string) {
			sse.writeEvent("content", map[string]string{"text": text})
		},
		OnReasoning: func(text string) {
			sse.writeEvent("reasoning", map[string]string{"text": text})
		},
		OnDone: func(visible, reasoning string) {
			sse.writeEvent("done", map[string]string{
				"text":      visible,
				"reasoning": reasoning,
			})
		},
		OnError: func(err error) {
			_, code := errorCode(err)
			sse.writeEvent("error", map[string]string{
				"code":    code,
				"message": err.Error(),
			})
		},
	})
	if provider.IsCancelled(err) {
		sse.writeEvent("cancelled", map[string]string{})
	}
}

// cancelTranslation aborts the running translation, if any.
func (s *Server) cancelTranslation(w http.ResponseWriter, r *http.Request) {
	s.translator.Cancel()
	writeSuccess(w)
}

// listModels returns the models of every registered provider.
func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	models := s.translator.Models(r.Context())
	if models == nil {
		models = []types.Model{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models})
}

// listHistory returns history records, newest first. The q query
// parameter filters by substring of the source or translated text.
func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "history is not enabled")
		return
	}

	recs, err := s.store.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	if recs == nil {
		recs = []types.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": recs})
}

func (s *Server) getHistoryRecord(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "history is not enabled")
		return
	}

	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteHistoryRecord(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "history is not enabled")
		return
	}

	if err := s.store.Remove(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeSuccess(w)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "history is not enabled")
		return
	}

	if err := s.store.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeSuccess(w)
}

// getSettings returns the whole settings document.
func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "settings are not enabled")
		return
	}
	writeJSON(w, http.StatusOK, s.settings.All())
}

// putSetting sets one value by dot-separated path.
func (s *Server) putSetting(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "settings are not enabled")
		return
	}

	var body struct {
		Path  string `json:"path"`
		Value any    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "path is required")
		return
	}

	if err := s.settings.Set(body.Path, body.Value); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeSuccess(w)
}

// getConfig returns the effective config with credentials masked.
func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	if s.appConfig == nil {
		writeJSON(w, http.StatusOK, types.Config{})
		return
	}

	redacted := *s.appConfig
	redacted.Provider = make(map[string]types.ProviderConfig, len(s.appConfig.Provider))
	for id, p := range s.appConfig.Provider {
		if p.APIKey != "" {
			p.APIKey = "redacted"
		}
		redacted.Provider[id] = p
	}
	writeJSON(w, http.StatusOK, redacted)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
