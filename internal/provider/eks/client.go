/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package eks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/eks"
)

// Client is the interface for AWS EKS operations.
// It defines the minimal set of EKS API methods needed by the provider.
type Client interface {
	// ListClusters lists the EKS clusters in the region.
	ListClusters(
		ctx context.Context,
		params *eks.ListClustersInput,
		optFns ...func(*eks.Options),
	) (*eks.ListClustersOutput, error)

	// ListNodegroups lists all node groups in an EKS cluster.
	ListNodegroups(
		ctx context.Context,
		params *eks.ListNodegroupsInput,
		optFns ...func(*eks.Options),
	) (*eks.ListNodegroupsOutput, error)

	// DescribeNodegroup describes a specific node group.
	DescribeNodegroup(
		ctx context.Context,
		params *eks.DescribeNodegroupInput,
		optFns ...func(*eks.Options),
	) (*eks.DescribeNodegroupOutput, error)

	// UpdateNodegroupConfig updates a node group's scaling config.
	UpdateNodegroupConfig(
		ctx context.Context,
		params *eks.UpdateNodegroupConfigInput,
		optFns ...func(*eks.Options),
	) (*eks.UpdateNodegroupConfigOutput, error)

	// TagResource adds tags to a node group.
	TagResource(
		ctx context.Context,
		params *eks.TagResourceInput,
		optFns ...func(*eks.Options),
	) (*eks.TagResourceOutput, error)

	// UntagResource removes tags from a node group.
	UntagResource(
		ctx context.Context,
		params *eks.UntagResourceInput,
		optFns ...func(*eks.Options),
	) (*eks.UntagResourceOutput, error)
}
