package provider

import (
	"errors"
	"testing"

	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(nil)
	for _, id := range []string{"openai", "anthropic", "gemini", "ollama", "lmstudio", "openrouter"} {
		if _, err := r.Get(id); err != nil {
			t.Errorf("Get(%q): %v", id, err)
		}
	}
}

func TestDefaultRegistryDisable(t *testing.T) {
	cfg := &types.Config{
		Provider: map[string]types.ProviderConfig{
			"gemini": {Disable: true},
		},
	}
	r := DefaultRegistry(cfg)
	if _, err := r.Get("gemini"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("disabled provider still registered, err = %v", err)
	}
	if _, err := r.Get("openai"); err != nil {
		t.Errorf("Get(openai): %v", err)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nope")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("err = %v, want ErrUnknownProvider", err)
	}
}

func TestRegistryListSorted(t *testing.T) {
	r := DefaultRegistry(nil)
	list := r.List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID() >= list[i].ID() {
			t.Errorf("list not sorted: %q before %q", list[i-1].ID(), list[i].ID())
		}
	}
}
