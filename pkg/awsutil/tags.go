/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package awsutil

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/samber/lo"
)

// TagMap builds a key/value map out of any AWS SDK tag slice.
func TagMap[T any](tags []T, key, value func(T) *string) map[string]string {
	return lo.SliceToMap(tags, func(t T) (string, string) {
		return aws.ToString(key(t)), aws.ToString(value(t))
	})
}
