/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package ec2 implements the provider for standalone EC2 instances.
// An instance has capacity 1 while running and 0 once stopped. Instances
// owned by an Auto Scaling group or Karpenter, and spot instances, are skipped.
package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/resource"
	"github.com/ardikabs/downscaler/pkg/awsutil"
)

const ProviderType = "ec2"

// Provider starts and stops EC2 instances.
type Provider struct {
	client Client
}

var _ provider.Provider = (*Provider)(nil)

// New creates a provider from an AWS config.
func New(cfg aws.Config) *Provider {
	return NewWithClient(ec2.NewFromConfig(cfg))
}

// NewWithClient creates a provider with an injected client.
func NewWithClient(client Client) *Provider {
	return &Provider{client: client}
}

// Type returns the provider type.
func (p *Provider) Type() string {
	return ProviderType
}

// List returns every standalone instance that is not terminated.
func (p *Provider) List(ctx context.Context) ([]resource.Descriptor, error) {
	var instances []types.Instance

	paginator := ec2.NewDescribeInstancesPaginator(p.client, &ec2.DescribeInstancesInput{
		// Exclude terminated and shutting-down instances
		Filters: []types.Filter{{
			Name:   aws.String("instance-state-name"),
			Values: []string{"running", "stopped", "pending", "stopping"},
		}},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, provider.Wrap(ProviderType, provider.OpList, "", err)
		}
		for _, reservation := range page.Reservations {
			instances = append(instances, reservation.Instances...)
		}
	}

	instances = awsutil.ApplyExclusions(instances,
		awsutil.ExcludeByASGManaged,
		awsutil.ExcludeByKarpenterManaged,
		awsutil.ExcludeBySpotLifecycle,
	)

	out := make([]resource.Descriptor, 0, len(instances))
	for _, inst := range instances {
		out = append(out, describe(inst))
	}
	return out, nil
}

// CurrentCapacity returns 1 for a running or pending instance, 0 otherwise.
func (p *Provider) CurrentCapacity(ctx context.Context, id string) (int, error) {
	inst, err := p.get(ctx, id)
	if err != nil {
		return 0, provider.Wrap(ProviderType, provider.OpCapacity, id, err)
	}
	return capacity(inst), nil
}

// SetCapacity stops the instance for 0 and starts it for anything above.
func (p *Provider) SetCapacity(ctx context.Context, id string, capacity int) error {
	var err error
	if capacity > 0 {
		_, err = p.client.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: []string{id}})
	} else {
		_, err = p.client.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: []string{id}})
	}
	return provider.Wrap(ProviderType, provider.OpScale, id, err)
}

// ReadTag returns an instance tag.
func (p *Provider) ReadTag(ctx context.Context, id, key string) (string, bool, error) {
	inst, err := p.get(ctx, id)
	if err != nil {
		return "", false, provider.Wrap(ProviderType, provider.OpReadTag, id, err)
	}
	v, ok := resource.LookupTag(tagMap(inst.Tags), key)
	return v, ok, nil
}

// WriteTag creates or overwrites an instance tag.
func (p *Provider) WriteTag(ctx context.Context, id, key, value string) error {
	_, err := p.client.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{id},
		Tags:      []types.Tag{{Key: aws.String(key), Value: aws.String(value)}},
	})
	return provider.Wrap(ProviderType, provider.OpWriteTag, id, err)
}

// DeleteTag removes an instance tag regardless of its value.
func (p *Provider) DeleteTag(ctx context.Context, id, key string) error {
	_, err := p.client.DeleteTags(ctx, &ec2.DeleteTagsInput{
		Resources: []string{id},
		Tags:      []types.Tag{{Key: aws.String(key)}},
	})
	return provider.Wrap(ProviderType, provider.OpDeleteTag, id, err)
}

func (p *Provider) get(ctx context.Context, id string) (types.Instance, error) {
	out, err := p.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{id}})
	if err != nil {
		return types.Instance{}, err
	}
	for _, reservation := range out.Reservations {
		if len(reservation.Instances) > 0 {
			return reservation.Instances[0], nil
		}
	}
	return types.Instance{}, fmt.Errorf("instance %s not found", id)
}

func describe(inst types.Instance) resource.Descriptor {
	id := aws.ToString(inst.InstanceId)
	tags := tagMap(inst.Tags)

	name := id
	if v, ok := tags["Name"]; ok && v != "" {
		name = v
	}

	return resource.Descriptor{
		Type:      ProviderType,
		ID:        id,
		Name:      name,
		CreatedAt: aws.ToTime(inst.LaunchTime),
		Capacity:  capacity(inst),
		Tags:      tags,
	}
}

func capacity(inst types.Instance) int {
	if inst.State == nil {
		return 0
	}
	switch inst.State.Name {
	case types.InstanceStateNameRunning, types.InstanceStateNamePending:
		return 1
	default:
		return 0
	}
}

func tagMap(tags []types.Tag) map[string]string {
	return awsutil.TagMap(tags,
		func(t types.Tag) *string { return t.Key },
		func(t types.Tag) *string { return t.Value },
	)
}
