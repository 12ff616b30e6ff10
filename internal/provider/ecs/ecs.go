/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package ecs implements the provider for ECS services across every cluster in
// the region. Resource IDs have the form "<cluster>/<service>" and capacity is
// the service's desired count.
package ecs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/samber/lo"

	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/resource"
	"github.com/ardikabs/downscaler/pkg/awsutil"
)

const ProviderType = "ecs"

// describeBatchSize is the DescribeServices limit.
const describeBatchSize = 10

// Provider scales ECS services.
type Provider struct {
	client Client
}

var _ provider.Provider = (*Provider)(nil)

// New creates a provider from an AWS config.
func New(cfg aws.Config) *Provider {
	return NewWithClient(ecs.NewFromConfig(cfg))
}

// NewWithClient creates a provider with an injected client.
func NewWithClient(client Client) *Provider {
	return &Provider{client: client}
}

// Type returns the provider type.
func (p *Provider) Type() string {
	return ProviderType
}

// List returns every service of every cluster. A failing cluster does not
// hide the services of the others; its error is joined into the result.
func (p *Provider) List(ctx context.Context) ([]resource.Descriptor, error) {
	clusters, err := p.listClusters(ctx)
	if err != nil {
		return nil, provider.Wrap(ProviderType, provider.OpList, "", err)
	}

	var (
		out  []resource.Descriptor
		errs []error
	)
	for _, clusterArn := range clusters {
		services, err := p.listCluster(ctx, clusterArn)
		if err != nil {
			errs = append(errs, fmt.Errorf("cluster %s: %w", lastSegment(clusterArn), err))
		}
		out = append(out, services...)
	}

	return out, provider.Wrap(ProviderType, provider.OpList, "", errors.Join(errs...))
}

// listCluster describes the services of one cluster, keeping the batches
// described before a failure.
func (p *Provider) listCluster(ctx context.Context, clusterArn string) ([]resource.Descriptor, error) {
	services, err := p.listServices(ctx, clusterArn)
	if err != nil {
		return nil, err
	}

	var out []resource.Descriptor
	for _, batch := range lo.Chunk(services, describeBatchSize) {
		resp, err := p.client.DescribeServices(ctx, &ecs.DescribeServicesInput{
			Cluster:  aws.String(clusterArn),
			Services: batch,
			Include:  []types.ServiceField{types.ServiceFieldTags},
		})
		if err != nil {
			return out, err
		}
		for _, svc := range resp.Services {
			out = append(out, describe(svc))
		}
	}
	return out, nil
}

// CurrentCapacity returns the desired count of a service.
func (p *Provider) CurrentCapacity(ctx context.Context, id string) (int, error) {
	svc, err := p.get(ctx, id)
	if err != nil {
		return 0, provider.Wrap(ProviderType, provider.OpCapacity, id, err)
	}
	return int(svc.DesiredCount), nil
}

// SetCapacity updates the desired count of a service.
func (p *Provider) SetCapacity(ctx context.Context, id string, capacity int) error {
	cluster, service, err := splitID(id)
	if err != nil {
		return provider.Wrap(ProviderType, provider.OpScale, id, err)
	}

	_, err = p.client.UpdateService(ctx, &ecs.UpdateServiceInput{
		Cluster:      aws.String(cluster),
		Service:      aws.String(service),
		DesiredCount: aws.Int32(int32(capacity)),
	})
	return provider.Wrap(ProviderType, provider.OpScale, id, err)
}

// ReadTag returns a service tag.
func (p *Provider) ReadTag(ctx context.Context, id, key string) (string, bool, error) {
	svc, err := p.get(ctx, id)
	if err != nil {
		return "", false, provider.Wrap(ProviderType, provider.OpReadTag, id, err)
	}
	v, ok := resource.LookupTag(tagMap(svc.Tags), key)
	return v, ok, nil
}

// WriteTag creates or overwrites a service tag.
func (p *Provider) WriteTag(ctx context.Context, id, key, value string) error {
	svc, err := p.get(ctx, id)
	if err != nil {
		return provider.Wrap(ProviderType, provider.OpWriteTag, id, err)
	}

	_, err = p.client.TagResource(ctx, &ecs.TagResourceInput{
		ResourceArn: svc.ServiceArn,
		Tags:        []types.Tag{{Key: aws.String(key), Value: aws.String(value)}},
	})
	return provider.Wrap(ProviderType, provider.OpWriteTag, id, err)
}

// DeleteTag removes a service tag.
func (p *Provider) DeleteTag(ctx context.Context, id, key string) error {
	svc, err := p.get(ctx, id)
	if err != nil {
		return provider.Wrap(ProviderType, provider.OpDeleteTag, id, err)
	}

	_, err = p.client.UntagResource(ctx, &ecs.UntagResourceInput{
		ResourceArn: svc.ServiceArn,
		TagKeys:     []string{key},
	})
	return provider.Wrap(ProviderType, provider.OpDeleteTag, id, err)
}

func (p *Provider) listClusters(ctx context.Context) ([]string, error) {
	var clusters []string
	paginator := ecs.NewListClustersPaginator(p.client, &ecs.ListClustersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, page.ClusterArns...)
	}
	return clusters, nil
}

func (p *Provider) listServices(ctx context.Context, clusterArn string) ([]string, error) {
	var services []string
	paginator := ecs.NewListServicesPaginator(p.client, &ecs.ListServicesInput{Cluster: aws.String(clusterArn)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		services = append(services, page.ServiceArns...)
	}
	return services, nil
}

func (p *Provider) get(ctx context.Context, id string) (types.Service, error) {
	cluster, service, err := splitID(id)
	if err != nil {
		return types.Service{}, err
	}

	resp, err := p.client.DescribeServices(ctx, &ecs.DescribeServicesInput{
		Cluster:  aws.String(cluster),
		Services: []string{service},
		Include:  []types.ServiceField{types.ServiceFieldTags},
	})
	if err != nil {
		return types.Service{}, err
	}
	if len(resp.Services) == 0 {
		return types.Service{}, fmt.Errorf("service %s not found", id)
	}
	return resp.Services[0], nil
}

func describe(svc types.Service) resource.Descriptor {
	name := aws.ToString(svc.ServiceName)
	return resource.Descriptor{
		Type:      ProviderType,
		ID:        lastSegment(aws.ToString(svc.ClusterArn)) + "/" + name,
		Name:      name,
		CreatedAt: aws.ToTime(svc.CreatedAt),
		Capacity:  int(svc.DesiredCount),
		Tags:      tagMap(svc.Tags),
	}
}

func tagMap(tags []types.Tag) map[string]string {
	return awsutil.TagMap(tags,
		func(t types.Tag) *string { return t.Key },
		func(t types.Tag) *string { return t.Value },
	)
}

func splitID(id string) (cluster, service string, err error) {
	cluster, service, ok := strings.Cut(id, "/")
	if !ok || cluster == "" || service == "" {
		return "", "", fmt.Errorf("invalid service id %q, expected <cluster>/<service>", id)
	}
	return cluster, service, nil
}

// lastSegment returns the part of an ARN after the last slash.
func lastSegment(arn string) string {
	return arn[strings.LastIndex(arn, "/")+1:]
}
