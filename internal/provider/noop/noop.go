/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package noop implements an in-memory provider for exercising the downscaler
// without external dependencies. It keeps capacities and tags in memory,
// records every mutation and can simulate failures per operation.
package noop

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/resource"
)

const ProviderType = "noop"

// Call records one mutation performed through the provider.
type Call struct {
	Op    string
	ID    string
	Key   string
	Value string
}

func (c Call) String() string {
	switch c.Op {
	case provider.OpScale:
		return fmt.Sprintf("%s %s=%s", c.Op, c.ID, c.Value)
	case provider.OpWriteTag:
		return fmt.Sprintf("%s %s %s=%s", c.Op, c.ID, c.Key, c.Value)
	default:
		return fmt.Sprintf("%s %s %s", c.Op, c.ID, c.Key)
	}
}

// Provider is an in-memory Provider.
type Provider struct {
	mu        sync.Mutex
	typ       string
	resources map[string]*resource.Descriptor
	failures  map[string]error
	calls     []Call
}

var _ provider.Provider = (*Provider)(nil)

// New creates a provider seeded with the given resources.
func New(resources ...resource.Descriptor) *Provider {
	return NewWithType(ProviderType, resources...)
}

// NewWithType creates a provider reporting the given type, so several in-memory
// providers can share one registry.
func NewWithType(providerType string, resources ...resource.Descriptor) *Provider {
	p := &Provider{
		typ:       providerType,
		resources: make(map[string]*resource.Descriptor, len(resources)),
		failures:  make(map[string]error),
	}
	for _, r := range resources {
		r.Type = providerType
		r.Tags = maps.Clone(r.Tags)
		if r.Tags == nil {
			r.Tags = map[string]string{}
		}
		p.resources[r.ID] = &r
	}
	return p
}

// Type returns the provider type.
func (p *Provider) Type() string {
	return p.typ
}

// FailOn makes every subsequent call to op fail with err. A nil err clears it.
func (p *Provider) FailOn(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.failures, op)
		return
	}
	p.failures[op] = err
}

// Calls returns the mutations performed so far.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// ResetCalls clears the mutation log.
func (p *Provider) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

// Get returns a copy of the stored resource.
func (p *Provider) Get(id string) (resource.Descriptor, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.resources[id]
	if !ok {
		return resource.Descriptor{}, false
	}
	out := *r
	out.Tags = maps.Clone(r.Tags)
	return out, true
}

// List returns all resources ordered by ID.
func (p *Provider) List(ctx context.Context) ([]resource.Descriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail(provider.OpList, ""); err != nil {
		return nil, err
	}

	out := make([]resource.Descriptor, 0, len(p.resources))
	for _, r := range p.resources {
		d := *r
		d.Tags = maps.Clone(r.Tags)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CurrentCapacity returns the stored capacity.
func (p *Provider) CurrentCapacity(ctx context.Context, id string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(provider.OpCapacity, id)
	if err != nil {
		return 0, err
	}
	return r.Capacity, nil
}

// SetCapacity stores the capacity.
func (p *Provider) SetCapacity(ctx context.Context, id string, capacity int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(provider.OpScale, id)
	if err != nil {
		return err
	}
	r.Capacity = capacity
	p.calls = append(p.calls, Call{Op: provider.OpScale, ID: id, Value: fmt.Sprint(capacity)})
	return nil
}

// ReadTag returns a stored tag.
func (p *Provider) ReadTag(ctx context.Context, id, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(provider.OpReadTag, id)
	if err != nil {
		return "", false, err
	}
	v, ok := resource.LookupTag(r.Tags, key)
	return v, ok, nil
}

// WriteTag stores a tag.
func (p *Provider) WriteTag(ctx context.Context, id, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(provider.OpWriteTag, id)
	if err != nil {
		return err
	}
	r.Tags[key] = value
	p.calls = append(p.calls, Call{Op: provider.OpWriteTag, ID: id, Key: key, Value: value})
	return nil
}

// DeleteTag removes a tag.
func (p *Provider) DeleteTag(ctx context.Context, id, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.lookup(provider.OpDeleteTag, id)
	if err != nil {
		return err
	}
	delete(r.Tags, key)
	p.calls = append(p.calls, Call{Op: provider.OpDeleteTag, ID: id, Key: key})
	return nil
}

func (p *Provider) lookup(op, id string) (*resource.Descriptor, error) {
	if err := p.fail(op, id); err != nil {
		return nil, err
	}
	r, ok := p.resources[id]
	if !ok {
		return nil, provider.Wrap(p.typ, op, id, fmt.Errorf("resource not found"))
	}
	return r, nil
}

func (p *Provider) fail(op, id string) error {
	if err, ok := p.failures[op]; ok {
		return provider.Wrap(p.typ, op, id, fmt.Errorf("simulated %s failure: %w", op, err))
	}
	return nil
}
