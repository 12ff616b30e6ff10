/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package eks implements the provider for EKS managed node groups.
// Resource IDs have the form "<cluster>/<nodegroup>" and capacity is the
// node group's desired size.
package eks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/eks/types"

	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/resource"
	"github.com/ardikabs/downscaler/internal/wellknown"
)

const ProviderType = "eks"

// Provider scales EKS managed node groups.
type Provider struct {
	client   Client
	clusters []string
}

var _ provider.Provider = (*Provider)(nil)

// New creates a provider from an AWS config. When clusters is empty every
// cluster in the region is scanned.
func New(cfg aws.Config, clusters ...string) *Provider {
	return NewWithClient(eks.NewFromConfig(cfg), clusters...)
}

// NewWithClient creates a provider with an injected client.
func NewWithClient(client Client, clusters ...string) *Provider {
	return &Provider{client: client, clusters: clusters}
}

// Type returns the provider type.
func (p *Provider) Type() string {
	return ProviderType
}

// List returns every managed node group of the scanned clusters.
func (p *Provider) List(ctx context.Context) ([]resource.Descriptor, error) {
	clusters := p.clusters
	if len(clusters) == 0 {
		var err error
		if clusters, err = p.listClusters(ctx); err != nil {
			return nil, provider.Wrap(ProviderType, provider.OpList, "", err)
		}
	}

	var out []resource.Descriptor
	for _, cluster := range clusters {
		paginator := eks.NewListNodegroupsPaginator(p.client, &eks.ListNodegroupsInput{ClusterName: aws.String(cluster)})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, provider.Wrap(ProviderType, provider.OpList, "", fmt.Errorf("cluster %s: %w", cluster, err))
			}

			for _, name := range page.Nodegroups {
				ng, err := p.describe(ctx, cluster, name)
				if err != nil {
					return nil, provider.Wrap(ProviderType, provider.OpList, "", fmt.Errorf("cluster %s: %w", cluster, err))
				}
				out = append(out, descriptor(ng))
			}
		}
	}

	return out, nil
}

// CurrentCapacity returns the desired size of a node group.
func (p *Provider) CurrentCapacity(ctx context.Context, id string) (int, error) {
	ng, err := p.get(ctx, id)
	if err != nil {
		return 0, provider.Wrap(ProviderType, provider.OpCapacity, id, err)
	}
	return int(desiredSize(ng)), nil
}

// SetCapacity updates the desired size, lowering the minimum size when needed
// the same way Auto Scaling groups are handled.
func (p *Provider) SetCapacity(ctx context.Context, id string, capacity int) error {
	ng, err := p.get(ctx, id)
	if err != nil {
		return provider.Wrap(ProviderType, provider.OpScale, id, err)
	}

	cfg := ng.ScalingConfig
	if cfg == nil {
		cfg = &types.NodegroupScalingConfig{}
	}

	desired := int32(capacity)
	maxSize := aws.ToInt32(cfg.MaxSize)
	if desired > maxSize {
		desired = maxSize
	}

	minSize := aws.ToInt32(cfg.MinSize)
	newMin := minSize
	recordedMin, hasRecordedMin := originalMinSize(ng.Tags)

	switch {
	case desired < minSize:
		if !hasRecordedMin {
			if err := p.WriteTag(ctx, id, wellknown.TagOriginalMinSize, strconv.Itoa(int(minSize))); err != nil {
				return err
			}
		}
		newMin = desired
	case hasRecordedMin && desired >= recordedMin:
		newMin = recordedMin
	}

	_, err = p.client.UpdateNodegroupConfig(ctx, &eks.UpdateNodegroupConfigInput{
		ClusterName:   ng.ClusterName,
		NodegroupName: ng.NodegroupName,
		ScalingConfig: &types.NodegroupScalingConfig{
			MinSize:     aws.Int32(newMin),
			DesiredSize: aws.Int32(desired),
			MaxSize:     aws.Int32(maxSize), // Keep max
		},
	})
	if err != nil {
		return provider.Wrap(ProviderType, provider.OpScale, id, err)
	}

	if hasRecordedMin && desired >= recordedMin {
		return p.DeleteTag(ctx, id, wellknown.TagOriginalMinSize)
	}
	return nil
}

// ReadTag returns a node group tag.
func (p *Provider) ReadTag(ctx context.Context, id, key string) (string, bool, error) {
	ng, err := p.get(ctx, id)
	if err != nil {
		return "", false, provider.Wrap(ProviderType, provider.OpReadTag, id, err)
	}
	v, ok := resource.LookupTag(ng.Tags, key)
	return v, ok, nil
}

// WriteTag creates or overwrites a node group tag.
func (p *Provider) WriteTag(ctx context.Context, id, key, value string) error {
	ng, err := p.get(ctx, id)
	if err != nil {
		return provider.Wrap(ProviderType, provider.OpWriteTag, id, err)
	}

	_, err = p.client.TagResource(ctx, &eks.TagResourceInput{
		ResourceArn: ng.NodegroupArn,
		Tags:        map[string]string{key: value},
	})
	return provider.Wrap(ProviderType, provider.OpWriteTag, id, err)
}

// DeleteTag removes a node group tag.
func (p *Provider) DeleteTag(ctx context.Context, id, key string) error {
	ng, err := p.get(ctx, id)
	if err != nil {
		return provider.Wrap(ProviderType, provider.OpDeleteTag, id, err)
	}

	_, err = p.client.UntagResource(ctx, &eks.UntagResourceInput{
		ResourceArn: ng.NodegroupArn,
		TagKeys:     []string{key},
	})
	return provider.Wrap(ProviderType, provider.OpDeleteTag, id, err)
}

func (p *Provider) listClusters(ctx context.Context) ([]string, error) {
	var clusters []string
	paginator := eks.NewListClustersPaginator(p.client, &eks.ListClustersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, page.Clusters...)
	}
	return clusters, nil
}

func (p *Provider) get(ctx context.Context, id string) (*types.Nodegroup, error) {
	cluster, name, ok := strings.Cut(id, "/")
	if !ok || cluster == "" || name == "" {
		return nil, fmt.Errorf("invalid node group id %q, expected <cluster>/<nodegroup>", id)
	}
	return p.describe(ctx, cluster, name)
}

func (p *Provider) describe(ctx context.Context, cluster, name string) (*types.Nodegroup, error) {
	out, err := p.client.DescribeNodegroup(ctx, &eks.DescribeNodegroupInput{
		ClusterName:   aws.String(cluster),
		NodegroupName: aws.String(name),
	})
	if err != nil {
		return nil, err
	}
	if out.Nodegroup == nil {
		return nil, fmt.Errorf("node group %s/%s not found", cluster, name)
	}
	return out.Nodegroup, nil
}

func descriptor(ng *types.Nodegroup) resource.Descriptor {
	name := aws.ToString(ng.NodegroupName)
	return resource.Descriptor{
		Type:      ProviderType,
		ID:        aws.ToString(ng.ClusterName) + "/" + name,
		Name:      name,
		CreatedAt: aws.ToTime(ng.CreatedAt),
		Capacity:  int(desiredSize(ng)),
		Tags:      ng.Tags,
	}
}

func desiredSize(ng *types.Nodegroup) int32 {
	if ng.ScalingConfig == nil {
		return 0
	}
	return aws.ToInt32(ng.ScalingConfig.DesiredSize)
}

func originalMinSize(tags map[string]string) (int32, bool) {
	v, ok := resource.LookupTag(tags, wellknown.TagOriginalMinSize)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return int32(n), true
}
