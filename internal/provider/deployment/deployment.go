/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package deployment implements the provider for Kubernetes Deployments.
// Resource IDs have the form "<namespace>/<name>" and capacity is
// spec.replicas. Tags are stored as annotations: "downscaler/<key>" is read and
// written as the tag "downscaler:<key>".
package deployment

import (
	"context"
	"fmt"
	"sort"

	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/resource"
	"github.com/ardikabs/downscaler/internal/wellknown"
	"github.com/ardikabs/downscaler/pkg/k8sutil"
)

const ProviderType = "deployment"

// Provider scales Deployments through a controller-runtime client.
type Provider struct {
	client     client.Client
	namespaces []string
}

var _ provider.Provider = (*Provider)(nil)

// New creates a provider. When namespaces is empty Deployments of every
// namespace are listed.
func New(c client.Client, namespaces ...string) *Provider {
	return &Provider{client: c, namespaces: namespaces}
}

// Type returns the provider type.
func (p *Provider) Type() string {
	return ProviderType
}

// List returns the Deployments of the configured namespaces.
func (p *Provider) List(ctx context.Context) ([]resource.Descriptor, error) {
	namespaces := p.namespaces
	if len(namespaces) == 0 {
		namespaces = []string{""}
	}

	var out []resource.Descriptor
	for _, ns := range namespaces {
		var list appsv1.DeploymentList
		if err := p.client.List(ctx, &list, client.InNamespace(ns)); err != nil {
			return nil, provider.Wrap(ProviderType, provider.OpList, "", err)
		}
		for i := range list.Items {
			out = append(out, describe(&list.Items[i]))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CurrentCapacity returns spec.replicas.
func (p *Provider) CurrentCapacity(ctx context.Context, id string) (int, error) {
	deploy, err := p.get(ctx, id)
	if err != nil {
		return 0, provider.Wrap(ProviderType, provider.OpCapacity, id, err)
	}
	return replicas(deploy), nil
}

// SetCapacity patches spec.replicas.
func (p *Provider) SetCapacity(ctx context.Context, id string, capacity int) error {
	err := p.patch(ctx, id, func(deploy *appsv1.Deployment) {
		deploy.Spec.Replicas = ptr.To(int32(capacity))
	})
	return provider.Wrap(ProviderType, provider.OpScale, id, err)
}

// ReadTag returns the annotation backing a tag.
func (p *Provider) ReadTag(ctx context.Context, id, key string) (string, bool, error) {
	deploy, err := p.get(ctx, id)
	if err != nil {
		return "", false, provider.Wrap(ProviderType, provider.OpReadTag, id, err)
	}
	v, ok := resource.LookupTag(deploy.Annotations, wellknown.AnnotationForTag(key))
	return v, ok, nil
}

// WriteTag sets the annotation backing a tag.
func (p *Provider) WriteTag(ctx context.Context, id, key, value string) error {
	err := p.patch(ctx, id, func(deploy *appsv1.Deployment) {
		if deploy.Annotations == nil {
			deploy.Annotations = map[string]string{}
		}
		deploy.Annotations[wellknown.AnnotationForTag(key)] = value
	})
	return provider.Wrap(ProviderType, provider.OpWriteTag, id, err)
}

// DeleteTag removes the annotation backing a tag.
func (p *Provider) DeleteTag(ctx context.Context, id, key string) error {
	err := p.patch(ctx, id, func(deploy *appsv1.Deployment) {
		delete(deploy.Annotations, wellknown.AnnotationForTag(key))
	})
	return provider.Wrap(ProviderType, provider.OpDeleteTag, id, err)
}

func (p *Provider) get(ctx context.Context, id string) (*appsv1.Deployment, error) {
	key, err := k8sutil.ObjectKeyFromString(id)
	if err != nil {
		return nil, err
	}

	var deploy appsv1.Deployment
	if err := p.client.Get(ctx, key, &deploy); err != nil {
		return nil, err
	}
	return &deploy, nil
}

func (p *Provider) patch(ctx context.Context, id string, mutate func(*appsv1.Deployment)) error {
	deploy, err := p.get(ctx, id)
	if err != nil {
		return err
	}

	base := deploy.DeepCopy()
	mutate(deploy)
	if err := p.client.Patch(ctx, deploy, client.MergeFrom(base)); err != nil {
		return fmt.Errorf("patch deployment: %w", err)
	}
	return nil
}

func describe(deploy *appsv1.Deployment) resource.Descriptor {
	id := client.ObjectKeyFromObject(deploy).String()
	return resource.Descriptor{
		Type:      ProviderType,
		ID:        id,
		Name:      id,
		CreatedAt: deploy.CreationTimestamp.Time,
		Capacity:  replicas(deploy),
		Tags:      tags(deploy.Annotations),
	}
}

// replicas defaults to 1 like the API server does.
func replicas(deploy *appsv1.Deployment) int {
	return int(ptr.Deref(deploy.Spec.Replicas, 1))
}

// tags translates downscaler annotations into tag keys and keeps the rest.
func tags(annotations map[string]string) map[string]string {
	out := make(map[string]string, len(annotations))
	for k, v := range annotations {
		if tag, ok := wellknown.TagForAnnotation(k); ok {
			out[tag] = v
			continue
		}
		out[k] = v
	}
	return out
}
