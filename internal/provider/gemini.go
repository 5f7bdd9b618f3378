package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/lingoflow-ai/lingoflow/internal/stream"
	"github.com/lingoflow-ai/lingoflow/internal/thinking"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// geminiProvider implements Provider for the generative-content API.
// Streaming uses SSE framing via alt=sse; the protocol has no
// reasoning field, so inline-tag extraction applies.
type geminiProvider struct{}

// NewGemini returns the Gemini adapter.
func NewGemini() Provider {
	return &geminiProvider{}
}

func (p *geminiProvider) ID() string   { return "gemini" }
func (p *geminiProvider) Name() string { return "Gemini" }

func (p *geminiProvider) checkCredential(cfg types.ProviderConfig) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("gemini: %w", ErrMissingCredential)
	}
	return nil
}

func (p *geminiProvider) model(cfg types.ProviderConfig) string {
	return modelOrDefault(cfg.Model, "gemini-2.0-flash")
}

func (p *geminiProvider) payload(req types.TranslationRequest, cfg types.ProviderConfig) map[string]any {
	system, user := BuildPrompts(req)

	genConfig := map[string]any{}
	for k, v := range cfg.Params {
		// The generative-content API uses camelCase parameter names.
		switch k {
		case "temperature":
			genConfig["temperature"] = v
		case "top_p":
			genConfig["topP"] = v
		case "max_tokens":
			genConfig["maxOutputTokens"] = int(v)
		}
	}

	body := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": user}},
			},
		},
		"systemInstruction": map[string]any{
			"parts": []map[string]string{{"text": system}},
		},
	}
	if len(genConfig) > 0 {
		body["generationConfig"] = genConfig
	}
	return body
}

// parseGeminiFrame decodes one generative-content stream frame.
func parseGeminiFrame(payload []byte) []stream.Event {
	var frame struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil
	}
	if len(frame.Candidates) == 0 || len(frame.Candidates[0].Content.Parts) == 0 {
		return nil
	}
	text := frame.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return nil
	}
	return []stream.Event{stream.Content(text)}
}

func (p *geminiProvider) Translate(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig) (types.TranslationResult, error) {
	if err := p.checkCredential(cfg); err != nil {
		return types.TranslationResult{}, err
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	client := newClient(baseOrDefault(cfg.BaseURL, "https://generativelanguage.googleapis.com"))
	path := fmt.Sprintf("/v1beta/models/%s:generateContent?key=%s",
		url.PathEscape(p.model(cfg)), url.QueryEscape(cfg.APIKey))
	if err := postJSON(ctx, client, path, nil, p.payload(req, cfg), &out); err != nil {
		return types.TranslationResult{}, err
	}

	var sb strings.Builder
	for _, c := range out.Candidates {
		for _, part := range c.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	visible, reasoning := thinking.Extract(sb.String())
	return types.TranslationResult{Text: visible, Reasoning: reasoning}, nil
}

func (p *geminiProvider) TranslateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb Callbacks) (types.TranslationResult, error) {
	res, err := p.translateStream(ctx, req, cfg, cb)
	if err != nil {
		return res, cb.fail(err)
	}
	return res, nil
}

func (p *geminiProvider) translateStream(ctx context.Context, req types.TranslationRequest, cfg types.ProviderConfig, cb Callbacks) (types.TranslationResult, error) {
	if err := p.checkCredential(cfg); err != nil {
		return types.TranslationResult{}, err
	}

	client := newClient(baseOrDefault(cfg.BaseURL, "https://generativelanguage.googleapis.com"))
	path := fmt.Sprintf("/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s",
		url.PathEscape(p.model(cfg)), url.QueryEscape(cfg.APIKey))
	body, err := openStream(ctx, client, path, nil, p.payload(req, cfg))
	if err != nil {
		return types.TranslationResult{}, err
	}
	return runStream(ctx, body, stream.NewSSEDecoder(parseGeminiFrame), true, cb)
}

func (p *geminiProvider) FetchModels(ctx context.Context, cfg types.ProviderConfig) []types.Model {
	client := newClient(baseOrDefault(cfg.BaseURL, "https://generativelanguage.googleapis.com"))
	return fetchWithFallback(ctx, geminiFallback, func() ([]types.Model, error) {
		var out struct {
			Models []struct {
				Name        string `json:"name"`
				DisplayName string `json:"displayName"`
			} `json:"models"`
		}
		path := "/v1beta/models?key=" + url.QueryEscape(cfg.APIKey)
		if err := getJSON(ctx, client, path, nil, &out); err != nil {
			return nil, err
		}
		models := make([]types.Model, 0, len(out.Models))
		for _, m := range out.Models {
			models = append(models, types.Model{
				ID:         strings.TrimPrefix(m.Name, "models/"),
				Name:       m.DisplayName,
				ProviderID: "gemini",
			})
		}
		return models, nil
	})
}
