package providers

import (
	"fmt"
	"sort"
	"sync"
)

// Known lists the backend names understood by New.
var Known = []string{"openai", "anthropic", "ollama"}

// New builds the named backend.
func New(name string, cfg Config) (Completer, error) {
	var (
		p   Completer
		err error
	)
	switch name {
	case "openai":
		p, err = NewOpenAI(cfg)
	case "anthropic":
		p, err = NewAnthropic(cfg)
	case "ollama":
		p, err = NewOllama(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// IsKnown reports whether name is a supported backend.
func IsKnown(name string) bool {
	for _, k := range Known {
		if k == name {
			return true
		}
	}
	return false
}

// Registry manages provider instances by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Completer
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Completer),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Completer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}
	r.providers[name] = p
	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Completer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not found", name)
	}
	return p, nil
}

// List returns all registered provider names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered providers.
func (r *Registry) All() []Completer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Completer, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}
	return providers
}
