// Package actions provides the host's action and option registries and the invoker that runs actions.
package actions

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dokzlo13/espresso-hue/internal/host"
)

// Registry holds all registered actions, keyed by slug
type Registry struct {
	mu      sync.RWMutex
	actions map[string]host.Action
}

// NewRegistry creates a new action registry
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]host.Action),
	}
}

// Register adds an action to the registry
func (r *Registry) Register(action host.Action) error {
	slug := action.Descriptor().Slug
	if slug == "" {
		return fmt.Errorf("action has no slug")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[slug]; exists {
		return fmt.Errorf("action %q already registered", slug)
	}

	r.actions[slug] = action
	return nil
}

// Get retrieves an action by slug
func (r *Registry) Get(slug string) (host.Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	action, exists := r.actions[slug]
	return action, exists
}

// Descriptors returns the descriptors of all registered actions, sorted by slug
func (r *Registry) Descriptors() []host.ActionDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]host.ActionDescriptor, 0, len(r.actions))
	for _, action := range r.actions {
		out = append(out, action.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Options holds the option sources referenced by select inputs
type Options struct {
	mu      sync.RWMutex
	sources map[string]host.OptionSource
}

// NewOptions creates a new option registry
func NewOptions() *Options {
	return &Options{
		sources: make(map[string]host.OptionSource),
	}
}

// Register adds an option source
func (o *Options) Register(source host.OptionSource) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.sources[source.Slug()]; exists {
		return fmt.Errorf("option source %q already registered", source.Slug())
	}

	o.sources[source.Slug()] = source
	return nil
}

// Get returns the options of the source registered under slug
func (o *Options) Get(ctx context.Context, slug string) ([]host.Option, bool) {
	o.mu.RLock()
	source, exists := o.sources[slug]
	o.mu.RUnlock()

	if !exists {
		return nil, false
	}
	return source.Options(ctx), true
}
