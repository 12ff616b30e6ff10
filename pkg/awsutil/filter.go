/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package awsutil

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/ardikabs/downscaler/internal/wellknown"
)

// ExclusionRule reports whether an instance must be left alone.
type ExclusionRule func(types.Instance) bool

// ExcludeByTag excludes instances carrying the given tag key.
func ExcludeByTag(key string) ExclusionRule {
	return func(inst types.Instance) bool {
		for _, tag := range inst.Tags {
			if aws.ToString(tag.Key) == key {
				return true
			}
		}
		return false
	}
}

// ExcludeByASGManaged excludes instances owned by an Auto Scaling group; the
// group itself is scaled instead.
func ExcludeByASGManaged(inst types.Instance) bool {
	return ExcludeByTag(wellknown.ManagedByASGTag)(inst)
}

// ExcludeByKarpenterManaged excludes instances provisioned by Karpenter.
func ExcludeByKarpenterManaged(inst types.Instance) bool {
	return ExcludeByTag(wellknown.ManagedByKarpenterTag)(inst)
}

// ExcludeBySpotLifecycle excludes spot instances, which cannot be stopped
// unless they are persistent requests.
func ExcludeBySpotLifecycle(inst types.Instance) bool {
	return inst.InstanceLifecycle == types.InstanceLifecycleTypeSpot
}

// ApplyExclusions drops every instance matched by any rule.
func ApplyExclusions(instances []types.Instance, rules ...ExclusionRule) []types.Instance {
	var filtered []types.Instance

	for _, inst := range instances {
		excluded := false

		for _, rule := range rules {
			if rule(inst) {
				excluded = true
				break
			}
		}

		if !excluded {
			filtered = append(filtered, inst)
		}
	}

	return filtered
}
