/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package provider defines the capability interface implemented by every
// resource type and the registry the controller iterates over.
package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/ardikabs/downscaler/internal/resource"
)

// Provider reads and mutates the capacity and tags of one resource type.
type Provider interface {
	// Type returns the resource type identifier (asg, ecs, ...).
	Type() string

	// List returns every resource of this type visible to the provider. A
	// partial failure returns the resources listed so far alongside the error.
	List(ctx context.Context) ([]resource.Descriptor, error)

	// CurrentCapacity returns the live capacity of a resource.
	CurrentCapacity(ctx context.Context, id string) (int, error)

	// SetCapacity sets the capacity of a resource.
	SetCapacity(ctx context.Context, id string, capacity int) error

	// ReadTag returns the value of a tag and whether it exists.
	ReadTag(ctx context.Context, id, key string) (string, bool, error)

	// WriteTag creates or overwrites a tag.
	WriteTag(ctx context.Context, id, key, value string) error

	// DeleteTag removes a tag. Removing a missing tag is not an error.
	DeleteTag(ctx context.Context, id, key string) error
}

// Registry holds registered providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry, replacing any provider of the same type.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Type()] = p
}

// Get retrieves a provider by type.
func (r *Registry) Get(providerType string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[providerType]
	return p, ok
}

// List returns all registered provider types in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.providers))
	for t := range r.providers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Providers returns all registered providers ordered by type.
func (r *Registry) Providers() []Provider {
	types := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(types))
	for _, t := range types {
		out = append(out, r.providers[t])
	}
	return out
}
