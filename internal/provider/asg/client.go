/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package asg

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
)

// Client is the interface for AWS Auto Scaling operations.
// It defines the minimal set of API methods needed by the provider.
type Client interface {
	// DescribeAutoScalingGroups describes one or more Auto Scaling groups.
	DescribeAutoScalingGroups(
		ctx context.Context,
		params *autoscaling.DescribeAutoScalingGroupsInput,
		optFns ...func(*autoscaling.Options),
	) (*autoscaling.DescribeAutoScalingGroupsOutput, error)

	// UpdateAutoScalingGroup updates the size of a group.
	UpdateAutoScalingGroup(
		ctx context.Context,
		params *autoscaling.UpdateAutoScalingGroupInput,
		optFns ...func(*autoscaling.Options),
	) (*autoscaling.UpdateAutoScalingGroupOutput, error)

	// CreateOrUpdateTags creates or updates group tags.
	CreateOrUpdateTags(
		ctx context.Context,
		params *autoscaling.CreateOrUpdateTagsInput,
		optFns ...func(*autoscaling.Options),
	) (*autoscaling.CreateOrUpdateTagsOutput, error)

	// DeleteTags deletes group tags.
	DeleteTags(
		ctx context.Context,
		params *autoscaling.DeleteTagsInput,
		optFns ...func(*autoscaling.Options),
	) (*autoscaling.DeleteTagsOutput, error)
}
