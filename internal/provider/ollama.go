package provider

import (
	"context"
	"encoding/json"

	"github.com/lingoflow-ai/lingoflow/internal/stream"
	"github.com/lingoflow-ai/lingoflow/internal/thinking"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// ollamaProvider implements Provider for a local Ollama server. The
// chat endpoint streams newline-delimited JSON objects and signals
// completion in-band with "done": true. No credential is required.
type ollamaProvider struct{}

// NewOllama returns the Ollama adapter.
func NewOllama() Provider {
	return &ollamaProvider{}
}

func (p *ollamaProvider) ID() string   { return "ollama" }
func (p *ollamaProvider) Name() string { return "Ollama" }

func (p *ollamaProvider) payload(req types.TranslationRequest, cfg types.ProviderConfig, streaming bool) map[string]any {
	system, user := BuildPrompts(req)
	body := map[string]any{
		"model": modelOrDefault(cfg.Model, "llama3.1"),
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"stream": streaming,
	}
	if len(cfg.Params) > 0 {
		options := map[string]any{}
		for k, v := range cfg.Params {
			if k == "max_tokens" {
				// Ollama calls the output-token bound num_predict.
				options["num_predict"] = int(v)
				continue
			}
			options[k] = v
		}
		body["options"] = options
	}
	return body
}

// parseOllamaFrame decodes one NDJSON chat frame.
func parseOllamaFrame(payload []byte) []stream.Event {
	var frame struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Done  bool   `json:"done"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil
	}
	if frame.Error != "" {
		return []stream.Event{stream.Errorf(frame.Error)}
	}
	var events []stream.Event
	if frame.Message.Content != "" {
		events = append(events, stream.Content(frame.Message.Content))
	}
	if frame.Done {
		events = append(events, stream.Done())
	}
	return events
}

func (p *ollamaProvider) Translate(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig) (types.TranslationResult, error) {
	var out struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	client := newClient(baseOrDefault(cfg.BaseURL, "http://localhost:11434"))
	if err := postJSON(ctx, client, "/api/chat", nil, p.payload(req, cfg, false), &out); err != nil {
		return types.TranslationResult{}, err
	}

	visible, reasoning := thinking.Extract(out.Message.Content)
	return types.TranslationResult{Text: visible, Reasoning: reasoning}, nil
}

func (p *ollamaProvider) TranslateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb Callbacks) (types.TranslationResult, error) {
	res, err := p.translateStream(ctx, req, cfg, cb)
	if err != nil {
		return res, cb.fail(err)
	}
	return res, nil
}

func (p *ollamaProvider) translateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb Callbacks) (types.TranslationResult, error) {
	client := newClient(baseOrDefault(cfg.BaseURL, "http://localhost:11434"))
	body, err := openStream(ctx, client, "/api/chat", nil, p.payload(req, cfg, true))
	if err != nil {
		return types.TranslationResult{}, err
	}
	return runStream(ctx, body, stream.NewNDJSONDecoder(parseOllamaFrame), true, cb)
}

func (p *ollamaProvider) FetchModels(ctx context.Context, cfg types.ProviderConfig) []types.Model {
	client := newClient(baseOrDefault(cfg.BaseURL, "http://localhost:11434"))
	return fetchWithFallback(ctx, ollamaFallback, func() ([]types.Model, error) {
		var out struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		if err := getJSON(ctx, client, "/api/tags", nil, &out); err != nil {
			return nil, err
		}
		models := make([]types.Model, 0, len(out.Models))
		for _, m := range out.Models {
			models = append(models, types.Model{ID: m.Name, ProviderID: "ollama"})
		}
		return models, nil
	})
}
