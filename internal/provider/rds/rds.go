/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package rds implements the provider for RDS DB instances that do not belong
// to a cluster. An instance has capacity 1 unless it is stopped or stopping.
package rds

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/samber/lo"

	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/resource"
	"github.com/ardikabs/downscaler/pkg/awsutil"
)

const ProviderType = "rds"

// restoreJobPrefix marks instances created by AWS Backup restore jobs.
const restoreJobPrefix = "aws-restore-"

// Provider starts and stops RDS DB instances.
type Provider struct {
	client Client
}

var _ provider.Provider = (*Provider)(nil)

// New creates a provider from an AWS config.
func New(cfg aws.Config) *Provider {
	return NewWithClient(rds.NewFromConfig(cfg))
}

// NewWithClient creates a provider with an injected client.
func NewWithClient(client Client) *Provider {
	return &Provider{client: client}
}

// Type returns the provider type.
func (p *Provider) Type() string {
	return ProviderType
}

// List returns every standalone DB instance.
func (p *Provider) List(ctx context.Context) ([]resource.Descriptor, error) {
	var out []resource.Descriptor

	paginator := rds.NewDescribeDBInstancesPaginator(p.client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, provider.Wrap(ProviderType, provider.OpList, "", err)
		}

		standalone := lo.Filter(page.DBInstances, func(db types.DBInstance, _ int) bool {
			return db.DBClusterIdentifier == nil && !strings.HasPrefix(aws.ToString(db.DBInstanceIdentifier), restoreJobPrefix)
		})
		for _, db := range standalone {
			out = append(out, describe(db))
		}
	}

	return out, nil
}

// CurrentCapacity returns 0 for a stopped or stopping instance, 1 otherwise.
func (p *Provider) CurrentCapacity(ctx context.Context, id string) (int, error) {
	db, err := p.get(ctx, id)
	if err != nil {
		return 0, provider.Wrap(ProviderType, provider.OpCapacity, id, err)
	}
	return capacity(db), nil
}

// SetCapacity stops the instance for 0 and starts it for anything above.
func (p *Provider) SetCapacity(ctx context.Context, id string, capacity int) error {
	var err error
	if capacity > 0 {
		_, err = p.client.StartDBInstance(ctx, &rds.StartDBInstanceInput{DBInstanceIdentifier: aws.String(id)})
	} else {
		_, err = p.client.StopDBInstance(ctx, &rds.StopDBInstanceInput{DBInstanceIdentifier: aws.String(id)})
	}
	return provider.Wrap(ProviderType, provider.OpScale, id, err)
}

// ReadTag returns an instance tag.
func (p *Provider) ReadTag(ctx context.Context, id, key string) (string, bool, error) {
	db, err := p.get(ctx, id)
	if err != nil {
		return "", false, provider.Wrap(ProviderType, provider.OpReadTag, id, err)
	}
	v, ok := resource.LookupTag(tagMap(db.TagList), key)
	return v, ok, nil
}

// WriteTag creates or overwrites an instance tag.
func (p *Provider) WriteTag(ctx context.Context, id, key, value string) error {
	db, err := p.get(ctx, id)
	if err != nil {
		return provider.Wrap(ProviderType, provider.OpWriteTag, id, err)
	}

	_, err = p.client.AddTagsToResource(ctx, &rds.AddTagsToResourceInput{
		ResourceName: db.DBInstanceArn,
		Tags:         []types.Tag{{Key: aws.String(key), Value: aws.String(value)}},
	})
	return provider.Wrap(ProviderType, provider.OpWriteTag, id, err)
}

// DeleteTag removes an instance tag.
func (p *Provider) DeleteTag(ctx context.Context, id, key string) error {
	db, err := p.get(ctx, id)
	if err != nil {
		return provider.Wrap(ProviderType, provider.OpDeleteTag, id, err)
	}

	_, err = p.client.RemoveTagsFromResource(ctx, &rds.RemoveTagsFromResourceInput{
		ResourceName: db.DBInstanceArn,
		TagKeys:      []string{key},
	})
	return provider.Wrap(ProviderType, provider.OpDeleteTag, id, err)
}

func (p *Provider) get(ctx context.Context, id string) (types.DBInstance, error) {
	out, err := p.client.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(id),
	})
	if err != nil {
		return types.DBInstance{}, err
	}
	if len(out.DBInstances) == 0 {
		return types.DBInstance{}, fmt.Errorf("DB instance %s not found", id)
	}
	return out.DBInstances[0], nil
}

func describe(db types.DBInstance) resource.Descriptor {
	id := aws.ToString(db.DBInstanceIdentifier)
	return resource.Descriptor{
		Type:      ProviderType,
		ID:        id,
		Name:      id,
		CreatedAt: aws.ToTime(db.InstanceCreateTime),
		Capacity:  capacity(db),
		Tags:      tagMap(db.TagList),
	}
}

func capacity(db types.DBInstance) int {
	switch aws.ToString(db.DBInstanceStatus) {
	case "stopped", "stopping":
		return 0
	default:
		return 1
	}
}

func tagMap(tags []types.Tag) map[string]string {
	return awsutil.TagMap(tags,
		func(t types.Tag) *string { return t.Key },
		func(t types.Tag) *string { return t.Value },
	)
}
