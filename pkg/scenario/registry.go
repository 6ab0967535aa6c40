package scenario

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages available scenarios by name
type Registry struct {
	mu        sync.RWMutex
	scenarios map[string]*Scenario
}

// NewRegistry creates a new scenario registry
func NewRegistry() *Registry {
	return &Registry{
		scenarios: make(map[string]*Scenario),
	}
}

// Register adds a scenario to the registry
func (r *Registry) Register(s *Scenario) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenarios[s.Name]; exists {
		return fmt.Errorf("scenario %s already registered", s.Name)
	}

	r.scenarios[s.Name] = s
	return nil
}

// Get returns the named scenario
func (r *Registry) Get(name string) (*Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.scenarios[name]
	if !exists {
		return nil, fmt.Errorf("scenario %s not found", name)
	}

	return s, nil
}

// List returns all registered scenario names in order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDefaultRegistry returns a registry holding the built-in scenarios
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range Builtin() {
		// built-in names are unique
		_ = r.Register(s)
	}
	return r
}
