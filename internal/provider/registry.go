package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// Registry holds the available providers keyed by ID.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// DefaultRegistry creates a registry with every built-in provider
// whose config does not disable it.
func DefaultRegistry(cfg *types.Config) *Registry {
	r := NewRegistry()
	for _, p := range []Provider{
		NewOpenAI(),
		NewAnthropic(),
		NewGemini(),
		NewOllama(),
		NewLMStudio(),
		NewOpenRouter(),
	} {
		if cfg != nil && cfg.Provider[p.ID()].Disable {
			continue
		}
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID()] = p
}

// Get returns the provider with the given ID.
func (r *Registry) Get(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownProvider)
	}
	return p, nil
}

// List returns all registered providers sorted by ID.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
