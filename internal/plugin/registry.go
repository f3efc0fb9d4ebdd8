package plugin

import (
	"fmt"
	"sort"
	"sync"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
)

// Registry holds the active plugins in the order their hooks run.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a plugin. Names must be unique.
func (r *Registry) Register(plugin Plugin) error {
	if plugin == nil {
		return fmt.Errorf("cannot register nil plugin")
	}

	metadata := plugin.Metadata()
	if err := metadata.Validate(); err != nil {
		return fmt.Errorf("invalid plugin metadata: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Metadata().Name == metadata.Name {
			return fmt.Errorf("plugin %s already registered", metadata.Name)
		}
	}
	r.plugins = append(r.plugins, plugin)
	return nil
}

// Get retrieves a plugin by name.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Metadata().Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("plugin %s not found", name)
}

// Has checks if a plugin with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// List returns the plugins in registration order.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Plugin(nil), r.plugins...)
}

// ListByType returns the plugins of a specific type, in order.
func (r *Registry) ListByType(pluginType PluginType) []Plugin {
	var result []Plugin
	for _, p := range r.List() {
		if p.Metadata().Type == pluginType {
			result = append(result, p)
		}
	}
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.plugins)
}

// Factory builds a plugin from the options listed next to its name.
type Factory func(options map[string]any) (Plugin, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// RegisterFactory makes a plugin constructible by name from the plugins list.
func RegisterFactory(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// LookupFactory returns the factory registered under name.
func LookupFactory(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// FactoryNames lists the registered factory names, sorted.
func FactoryNames() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromConfig instantiates the plugins named in the plugins list, in order.
// Names without a registered factory are returned in skipped.
func FromConfig(entries config.PluginEntries) (*Registry, []string, error) {
	registry := NewRegistry()
	var skipped []string
	for _, entry := range entries {
		factory, ok := LookupFactory(entry.Name)
		if !ok {
			skipped = append(skipped, entry.Name)
			continue
		}
		p, err := factory(entry.Options)
		if err != nil {
			return nil, nil, fmt.Errorf("create plugin %s: %w", entry.Name, err)
		}
		if err := p.Validate(entry.Options); err != nil {
			return nil, nil, fmt.Errorf("plugin %s: %w", entry.Name, err)
		}
		if err := registry.Register(p); err != nil {
			return nil, nil, err
		}
	}
	return registry, skipped, nil
}
