package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lingoflow-ai/lingoflow/internal/stream"
	"github.com/lingoflow-ai/lingoflow/internal/thinking"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// openAICompat implements Provider for every chat-completions style
// endpoint. OpenAI itself, OpenRouter and local OpenAI-compatible
// servers (LM Studio) all speak the same frames; they differ only in
// base URL, credential requirements and reasoning delivery: hosted
// endpoints have no reasoning field and fall back to inline-tag
// extraction, local servers may stream `reasoning_content` deltas.
type openAICompat struct {
	id           string
	name         string
	baseURL      string
	requiresKey  bool
	defaultModel string
	fallback     []types.Model
}

// NewOpenAI returns the OpenAI adapter.
func NewOpenAI() Provider {
	return &openAICompat{
		id:           "openai",
		name:         "OpenAI",
		baseURL:      "https://api.openai.com/v1",
		requiresKey:  true,
		defaultModel: "gpt-4o-mini",
		fallback:     openAIFallback,
	}
}

// NewOpenRouter returns the OpenRouter adapter.
func NewOpenRouter() Provider {
	return &openAICompat{
		id:           "openrouter",
		name:         "OpenRouter",
		baseURL:      "https://openrouter.ai/api/v1",
		requiresKey:  true,
		defaultModel: "meta-llama/llama-3.1-70b-instruct",
		fallback:     openRouterFallback,
	}
}

// NewLMStudio returns the adapter for a local LM Studio server.
func NewLMStudio() Provider {
	return &openAICompat{
		id:           "lmstudio",
		name:         "LM Studio",
		baseURL:      "http://localhost:1234/v1",
		requiresKey:  false,
		defaultModel: "local-model",
		fallback:     lmStudioFallback,
	}
}

func (p *openAICompat) ID() string   { return p.id }
func (p *openAICompat) Name() string { return p.name }

func (p *openAICompat) headers(cfg types.ProviderConfig) map[string]string {
	if cfg.APIKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + cfg.APIKey}
}

func (p *openAICompat) checkCredential(cfg types.ProviderConfig) error {
	if p.requiresKey && cfg.APIKey == "" {
		return fmt.Errorf("%s: %w", p.id, ErrMissingCredential)
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *openAICompat) payload(req types.TranslationRequest, cfg types.ProviderConfig, streaming bool) map[string]any {
	system, user := BuildPrompts(req)
	body := map[string]any{
		"model": modelOrDefault(cfg.Model, p.defaultModel),
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"stream": streaming,
	}
	for k, v := range cfg.Params {
		if k == "max_tokens" {
			body[k] = int(v)
			continue
		}
		body[k] = v
	}
	return body
}

// parseChatDelta decodes one chat-completions stream frame.
func parseChatDelta(payload []byte) []stream.Event {
	var frame struct {
		Choices []struct {
			Delta struct {
				Content          string `json:"content"`
				ReasoningContent string `json:"reasoning_content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil
	}
	if len(frame.Choices) == 0 {
		return nil
	}
	var events []stream.Event
	delta := frame.Choices[0].Delta
	if delta.ReasoningContent != "" {
		events = append(events, stream.Reasoning(delta.ReasoningContent))
	}
	if delta.Content != "" {
		events = append(events, stream.Content(delta.Content))
	}
	return events
}

func (p *openAICompat) Translate(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig) (types.TranslationResult, error) {
	if err := p.checkCredential(cfg); err != nil {
		return types.TranslationResult{}, err
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content          string `json:"content"`
				ReasoningContent string `json:"reasoning_content"`
			} `json:"message"`
		} `json:"choices"`
	}
	client := newClient(baseOrDefault(cfg.BaseURL, p.baseURL))
	if err := postJSON(ctx, client, "/chat/completions", p.headers(cfg), p.payload(req, cfg, false), &out); err != nil {
		return types.TranslationResult{}, err
	}
	if len(out.Choices) == 0 {
		return types.TranslationResult{}, &TransportError{Message: "response contained no choices"}
	}

	msg := out.Choices[0].Message
	visible, extracted := thinking.Extract(msg.Content)
	return types.TranslationResult{
		Text:      visible,
		Reasoning: joinReasoning(msg.ReasoningContent, extracted),
	}, nil
}

func (p *openAICompat) TranslateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb Callbacks) (types.TranslationResult, error) {
	res, err := p.translateStream(ctx, req, cfg, cb)
	if err != nil {
		return res, cb.fail(err)
	}
	return res, nil
}

func (p *openAICompat) translateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb Callbacks) (types.TranslationResult, error) {
	if err := p.checkCredential(cfg); err != nil {
		return types.TranslationResult{}, err
	}

	client := newClient(baseOrDefault(cfg.BaseURL, p.baseURL))
	body, err := openStream(ctx, client, "/chat/completions", p.headers(cfg), p.payload(req, cfg, true))
	if err != nil {
		return types.TranslationResult{}, err
	}
	return runStream(ctx, body, stream.NewSSEDecoder(parseChatDelta), true, cb)
}

func (p *openAICompat) FetchModels(ctx context.Context, cfg types.ProviderConfig) []types.Model {
	client := newClient(baseOrDefault(cfg.BaseURL, p.baseURL))
	return fetchWithFallback(ctx, p.fallback, func() ([]types.Model, error) {
		var out struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		if err := getJSON(ctx, client, "/models", p.headers(cfg), &out); err != nil {
			return nil, err
		}
		models := make([]types.Model, 0, len(out.Data))
		for _, m := range out.Data {
			models = append(models, types.Model{ID: m.ID, ProviderID: p.id})
		}
		return models, nil
	})
}
