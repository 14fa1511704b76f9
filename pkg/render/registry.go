package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrRendererNotFound is returned when no renderer matches a lookup.
var ErrRendererNotFound = errors.New("render: renderer not found")

// Registry stores renderers by name. The first registered renderer becomes
// the default unless SetDefault picks another.
type Registry struct {
	mu          sync.RWMutex
	renderers   map[string]Renderer
	defaultName string
}

// NewRegistry creates a registry holding the given renderers.
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	r := &Registry{renderers: make(map[string]Renderer)}
	for _, renderer := range renderers {
		if err := r.Register(renderer); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	if r.defaultName == "" {
		r.defaultName = name
	}
	return nil
}

// SetDefault selects the renderer Resolve falls back to.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.renderers[name]; !ok {
		return fmt.Errorf("%w: %q", ErrRendererNotFound, name)
	}
	r.defaultName = name
	return nil
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, name)
	}
	return renderer, nil
}

// Resolve returns the named renderer, or the default when name is empty.
func (r *Registry) Resolve(name string) (Renderer, error) {
	if name != "" {
		return r.Get(name)
	}

	r.mu.RLock()
	defaultName := r.defaultName
	r.mu.RUnlock()

	if defaultName == "" {
		return nil, fmt.Errorf("%w: registry is empty", ErrRendererNotFound)
	}
	return r.Get(defaultName)
}

// List returns the sorted renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
