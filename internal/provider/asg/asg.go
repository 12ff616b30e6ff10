/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package asg implements the provider for EC2 Auto Scaling groups.
// Capacity is the group's desired capacity.
package asg

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling/types"

	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/resource"
	"github.com/ardikabs/downscaler/internal/wellknown"
	"github.com/ardikabs/downscaler/pkg/awsutil"
)

const ProviderType = "asg"

const tagResourceType = "auto-scaling-group"

// Provider scales Auto Scaling groups.
type Provider struct {
	client Client
}

var _ provider.Provider = (*Provider)(nil)

// New creates a provider from an AWS config.
func New(cfg aws.Config) *Provider {
	return NewWithClient(autoscaling.NewFromConfig(cfg))
}

// NewWithClient creates a provider with an injected client.
// This is useful for testing with mock clients.
func NewWithClient(client Client) *Provider {
	return &Provider{client: client}
}

// Type returns the provider type.
func (p *Provider) Type() string {
	return ProviderType
}

// List returns every Auto Scaling group in the region.
func (p *Provider) List(ctx context.Context) ([]resource.Descriptor, error) {
	var out []resource.Descriptor

	paginator := autoscaling.NewDescribeAutoScalingGroupsPaginator(p.client, &autoscaling.DescribeAutoScalingGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, provider.Wrap(ProviderType, provider.OpList, "", err)
		}
		for _, group := range page.AutoScalingGroups {
			out = append(out, describe(group))
		}
	}

	return out, nil
}

// CurrentCapacity returns the desired capacity of a group.
func (p *Provider) CurrentCapacity(ctx context.Context, id string) (int, error) {
	group, err := p.get(ctx, id)
	if err != nil {
		return 0, provider.Wrap(ProviderType, provider.OpCapacity, id, err)
	}
	return int(aws.ToInt32(group.DesiredCapacity)), nil
}

// SetCapacity updates the desired capacity. When the target is below the
// group's minimum size the minimum is lowered too and the previous minimum is
// kept in a tag; it is put back once the group grows past it again.
func (p *Provider) SetCapacity(ctx context.Context, id string, capacity int) error {
	group, err := p.get(ctx, id)
	if err != nil {
		return provider.Wrap(ProviderType, provider.OpScale, id, err)
	}

	desired := int32(capacity)
	if maxSize := aws.ToInt32(group.MaxSize); desired > maxSize {
		desired = maxSize
	}

	input := &autoscaling.UpdateAutoScalingGroupInput{
		AutoScalingGroupName: group.AutoScalingGroupName,
		DesiredCapacity:      aws.Int32(desired),
	}

	minSize := aws.ToInt32(group.MinSize)
	recordedMin, hasRecordedMin := originalMinSize(group)

	switch {
	case desired < minSize:
		if !hasRecordedMin {
			if err := p.WriteTag(ctx, id, wellknown.TagOriginalMinSize, strconv.Itoa(int(minSize))); err != nil {
				return err
			}
		}
		input.MinSize = aws.Int32(desired)
	case hasRecordedMin && desired >= recordedMin:
		input.MinSize = aws.Int32(recordedMin)
	}

	if _, err := p.client.UpdateAutoScalingGroup(ctx, input); err != nil {
		return provider.Wrap(ProviderType, provider.OpScale, id, err)
	}

	if hasRecordedMin && desired >= recordedMin {
		return p.DeleteTag(ctx, id, wellknown.TagOriginalMinSize)
	}
	return nil
}

// ReadTag returns a group tag.
func (p *Provider) ReadTag(ctx context.Context, id, key string) (string, bool, error) {
	group, err := p.get(ctx, id)
	if err != nil {
		return "", false, provider.Wrap(ProviderType, provider.OpReadTag, id, err)
	}
	v, ok := resource.LookupTag(tagMap(group.Tags), key)
	return v, ok, nil
}

// WriteTag creates or overwrites a group tag. The tag is not propagated to instances.
func (p *Provider) WriteTag(ctx context.Context, id, key, value string) error {
	_, err := p.client.CreateOrUpdateTags(ctx, &autoscaling.CreateOrUpdateTagsInput{
		Tags: []types.Tag{{
			ResourceId:        aws.String(id),
			ResourceType:      aws.String(tagResourceType),
			Key:               aws.String(key),
			Value:             aws.String(value),
			PropagateAtLaunch: aws.Bool(false),
		}},
	})
	return provider.Wrap(ProviderType, provider.OpWriteTag, id, err)
}

// DeleteTag removes a group tag.
func (p *Provider) DeleteTag(ctx context.Context, id, key string) error {
	_, err := p.client.DeleteTags(ctx, &autoscaling.DeleteTagsInput{
		Tags: []types.Tag{{
			ResourceId:   aws.String(id),
			ResourceType: aws.String(tagResourceType),
			Key:          aws.String(key),
		}},
	})
	return provider.Wrap(ProviderType, provider.OpDeleteTag, id, err)
}

func (p *Provider) get(ctx context.Context, name string) (types.AutoScalingGroup, error) {
	out, err := p.client.DescribeAutoScalingGroups(ctx, &autoscaling.DescribeAutoScalingGroupsInput{
		AutoScalingGroupNames: []string{name},
	})
	if err != nil {
		return types.AutoScalingGroup{}, err
	}
	if len(out.AutoScalingGroups) == 0 {
		return types.AutoScalingGroup{}, fmt.Errorf("auto scaling group %s not found", name)
	}
	return out.AutoScalingGroups[0], nil
}

func describe(group types.AutoScalingGroup) resource.Descriptor {
	name := aws.ToString(group.AutoScalingGroupName)
	return resource.Descriptor{
		Type:      ProviderType,
		ID:        name,
		Name:      name,
		CreatedAt: aws.ToTime(group.CreatedTime),
		Capacity:  int(aws.ToInt32(group.DesiredCapacity)),
		Tags:      tagMap(group.Tags),
	}
}

func tagMap(tags []types.TagDescription) map[string]string {
	return awsutil.TagMap(tags,
		func(t types.TagDescription) *string { return t.Key },
		func(t types.TagDescription) *string { return t.Value },
	)
}

func originalMinSize(group types.AutoScalingGroup) (int32, bool) {
	v, ok := resource.LookupTag(tagMap(group.Tags), wellknown.TagOriginalMinSize)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return int32(n), true
}
