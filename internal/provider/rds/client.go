/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package rds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/rds"
)

// Client is the interface for AWS RDS operations used by the provider.
type Client interface {
	DescribeDBInstances(
		ctx context.Context,
		params *rds.DescribeDBInstancesInput,
		optFns ...func(*rds.Options),
	) (*rds.DescribeDBInstancesOutput, error)

	StopDBInstance(
		ctx context.Context,
		params *rds.StopDBInstanceInput,
		optFns ...func(*rds.Options),
	) (*rds.StopDBInstanceOutput, error)

	StartDBInstance(
		ctx context.Context,
		params *rds.StartDBInstanceInput,
		optFns ...func(*rds.Options),
	) (*rds.StartDBInstanceOutput, error)

	AddTagsToResource(
		ctx context.Context,
		params *rds.AddTagsToResourceInput,
		optFns ...func(*rds.Options),
	) (*rds.AddTagsToResourceOutput, error)

	RemoveTagsFromResource(
		ctx context.Context,
		params *rds.RemoveTagsFromResourceInput,
		optFns ...func(*rds.Options),
	) (*rds.RemoveTagsFromResourceOutput, error)
}
