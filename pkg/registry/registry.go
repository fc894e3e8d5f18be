// Package registry creates named components from JSON configuration.
package registry

import (
	"encoding/json"
	"fmt"
	"sort"
)

type Component interface {
	any
}

type Provider interface {
	any
}

// ComponentCreator builds a component. config is nil when the component
// was selected without options.
type ComponentCreator[C Component, P Provider] func(config json.RawMessage, provider P) (C, error)

type Registry[C Component, P Provider] struct {
	components map[string]ComponentCreator[C, P]
	provider   P
}

func NewRegistry[C Component, P Provider](provider P) *Registry[C, P] {
	return &Registry[C, P]{
		provider:   provider,
		components: make(map[string]ComponentCreator[C, P]),
	}
}

func (r *Registry[C, P]) Register(id string, creator ComponentCreator[C, P]) {
	if _, ok := r.components[id]; ok {
		panic(fmt.Sprintf("component %s already registered", id))
	}
	r.components[id] = creator
}

func (r *Registry[C, P]) Has(id string) bool {
	_, ok := r.components[id]
	return ok
}

// Names returns the registered ids in sorted order.
func (r *Registry[C, P]) Names() []string {
	names := make([]string, 0, len(r.components))
	for id := range r.components {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

func (r *Registry[C, P]) New(id string, config json.RawMessage) (C, error) {
	creator, ok := r.components[id]
	if !ok {
		var component C
		return component, fmt.Errorf("component not found: %s (available: %v)", id, r.Names())
	}
	component, err := creator(config, r.provider)
	if err != nil {
		return component, fmt.Errorf("failed to create %s: %w", id, err)
	}
	return component, nil
}
