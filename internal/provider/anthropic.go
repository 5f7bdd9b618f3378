package provider

import (
	"context"
	"fmt"

	"github.com/lingoflow-ai/lingoflow/internal/stream"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

const anthropicVersion = "2023-06-01"

// anthropicProvider implements Provider for the Anthropic messages API.
// Its streaming protocol is block-typed: thinking arrives as a distinct
// delta sub-type, so the inline-tag extractor is bypassed entirely.
type anthropicProvider struct{}

// NewAnthropic returns the Anthropic adapter.
func NewAnthropic() Provider {
	return &anthropicProvider{}
}

func (p *anthropicProvider) ID() string   { return "anthropic" }
func (p *anthropicProvider) Name() string { return "Anthropic" }

func (p *anthropicProvider) headers(cfg types.ProviderConfig) map[string]string {
	return map[string]string{
		"x-api-key":         cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}
}

func (p *anthropicProvider) checkCredential(cfg types.ProviderConfig) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("anthropic: %w", ErrMissingCredential)
	}
	return nil
}

func (p *anthropicProvider) payload(req types.TranslationRequest, cfg types.ProviderConfig, streaming bool) map[string]any {
	system, user := BuildPrompts(req)

	maxTokens := 4096
	if v, ok := cfg.Param("max_tokens"); ok {
		maxTokens = int(v)
	}

	body := map[string]any{
		"model":      modelOrDefault(cfg.Model, "claude-3-5-haiku-latest"),
		"max_tokens": maxTokens,
		"system":     system,
		"messages": []chatMessage{
			{Role: "user", Content: user},
		},
		"stream": streaming,
	}
	for k, v := range cfg.Params {
		if k == "max_tokens" {
			continue
		}
		body[k] = v
	}
	return body
}

func (p *anthropicProvider) Translate(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig) (types.TranslationResult, error) {
	if err := p.checkCredential(cfg); err != nil {
		return types.TranslationResult{}, err
	}

	var out struct {
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			Thinking string `json:"thinking"`
		} `json:"content"`
	}
	client := newClient(baseOrDefault(cfg.BaseURL, "https://api.anthropic.com/v1"))
	if err := postJSON(ctx, client, "/messages", p.headers(cfg), p.payload(req, cfg, false), &out); err != nil {
		return types.TranslationResult{}, err
	}

	var res types.TranslationResult
	for _, block := range out.Content {
		switch block.Type {
		case "text":
			res.Text += block.Text
		case "thinking":
			res.Reasoning += block.Thinking
		}
	}
	return res, nil
}

func (p *anthropicProvider) TranslateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb Callbacks) (types.TranslationResult, error) {
	res, err := p.translateStream(ctx, req, cfg, cb)
	if err != nil {
		return res, cb.fail(err)
	}
	return res, nil
}

func (p *anthropicProvider) translateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb Callbacks) (types.TranslationResult, error) {
	if err := p.checkCredential(cfg); err != nil {
		return types.TranslationResult{}, err
	}

	client := newClient(baseOrDefault(cfg.BaseURL, "https://api.anthropic.com/v1"))
	body, err := openStream(ctx, client, "/messages", p.headers(cfg), p.payload(req, cfg, true))
	if err != nil {
		return types.TranslationResult{}, err
	}
	return runStream(ctx, body, stream.NewTypedDecoder(), false, cb)
}

func (p *anthropicProvider) FetchModels(ctx context.Context, cfg types.ProviderConfig) []types.Model {
	client := newClient(baseOrDefault(cfg.BaseURL, "https://api.anthropic.com/v1"))
	return fetchWithFallback(ctx, anthropicFallback, func() ([]types.Model, error) {
		var out struct {
			Data []struct {
				ID          string `json:"id"`
				DisplayName string `json:"display_name"`
			} `json:"data"`
		}
		if err := getJSON(ctx, client, "/models", p.headers(cfg), &out); err != nil {
			return nil, err
		}
		models := make([]types.Model, 0, len(out.Data))
		for _, m := range out.Data {
			models = append(models, types.Model{
				ID:                m.ID,
				Name:              m.DisplayName,
				ProviderID:        "anthropic",
				SupportsReasoning: true,
			})
		}
		return models, nil
	})
}
