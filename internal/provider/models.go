package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lingoflow-ai/lingoflow/internal/logging"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// fetchWithFallback runs a model listing with one short retry and
// substitutes the static fallback list when the endpoint is
// unreachable or returns garbage. An empty successful listing also
// falls back, since it would leave the user with no selectable model.
func fetchWithFallback(ctx context.Context, fallback []types.Model, fetch func() ([]types.Model, error)) []types.Model {
	var models []types.Model

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(300*time.Millisecond), 1), ctx)
	err := backoff.Retry(func() error {
		var ferr error
		models, ferr = fetch()
		return ferr
	}, policy)

	if err != nil || len(models) == 0 {
		if err != nil {
			logging.Logger.Debug().Err(err).Msg("model listing failed, using fallback list")
		}
		out := make([]types.Model, len(fallback))
		copy(out, fallback)
		return out
	}
	return models
}

// Static fallback model lists, used when live discovery fails. They
// only need to cover common defaults; users can always type a model
// name directly.
var (
	openAIFallback = []types.Model{
		{ID: "gpt-4o", Name: "GPT-4o", ProviderID: "openai"},
		{ID: "gpt-4o-mini", Name: "GPT-4o mini", ProviderID: "openai"},
		{ID: "o3-mini", Name: "o3-mini", ProviderID: "openai", SupportsReasoning: true},
	}

	anthropicFallback = []types.Model{
		{ID: "claude-3-5-sonnet-latest", Name: "Claude 3.5 Sonnet", ProviderID: "anthropic"},
		{ID: "claude-3-5-haiku-latest", Name: "Claude 3.5 Haiku", ProviderID: "anthropic"},
		{ID: "claude-3-7-sonnet-latest", Name: "Claude 3.7 Sonnet", ProviderID: "anthropic", SupportsReasoning: true},
	}

	geminiFallback = []types.Model{
		{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", ProviderID: "gemini"},
		{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", ProviderID: "gemini"},
	}

	ollamaFallback = []types.Model{
		{ID: "llama3.1", Name: "Llama 3.1", ProviderID: "ollama"},
		{ID: "qwen2.5", Name: "Qwen 2.5", ProviderID: "ollama"},
		{ID: "deepseek-r1", Name: "DeepSeek R1", ProviderID: "ollama", SupportsReasoning: true},
	}

	openRouterFallback = []types.Model{
		{ID: "meta-llama/llama-3.1-70b-instruct", Name: "Llama 3.1 70B", ProviderID: "openrouter"},
		{ID: "deepseek/deepseek-r1", Name: "DeepSeek R1", ProviderID: "openrouter", SupportsReasoning: true},
	}

	lmStudioFallback = []types.Model{
		{ID: "local-model", Name: "Loaded model", ProviderID: "lmstudio"},
	}
)
