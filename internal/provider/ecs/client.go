/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package ecs

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ecs"
)

// Client is the interface for AWS ECS operations used by the provider.
type Client interface {
	ListClusters(
		ctx context.Context,
		params *ecs.ListClustersInput,
		optFns ...func(*ecs.Options),
	) (*ecs.ListClustersOutput, error)

	ListServices(
		ctx context.Context,
		params *ecs.ListServicesInput,
		optFns ...func(*ecs.Options),
	) (*ecs.ListServicesOutput, error)

	DescribeServices(
		ctx context.Context,
		params *ecs.DescribeServicesInput,
		optFns ...func(*ecs.Options),
	) (*ecs.DescribeServicesOutput, error)

	UpdateService(
		ctx context.Context,
		params *ecs.UpdateServiceInput,
		optFns ...func(*ecs.Options),
	) (*ecs.UpdateServiceOutput, error)

	TagResource(
		ctx context.Context,
		params *ecs.TagResourceInput,
		optFns ...func(*ecs.Options),
	) (*ecs.TagResourceOutput, error)

	UntagResource(
		ctx context.Context,
		params *ecs.UntagResourceInput,
		optFns ...func(*ecs.Options),
	) (*ecs.UntagResourceOutput, error)
}
