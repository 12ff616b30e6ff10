/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package resource describes the provider-neutral view of a scalable resource.
package resource

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ardikabs/downscaler/internal/wellknown"
)

// Descriptor is a snapshot of a resource as observed during one evaluation cycle.
type Descriptor struct {
	// Type is the provider type that owns the resource (asg, ecs, ...).
	Type string
	// ID uniquely identifies the resource within its provider.
	ID string
	// Name is the human-readable name used by include/exclude filters and logs.
	Name string
	// CreatedAt is the creation time. The zero value means unknown.
	CreatedAt time.Time
	// Capacity is the observed capacity (desired count, replicas, 1/0 for start-stop resources).
	Capacity int
	// Tags holds the raw tag values keyed by tag key.
	Tags map[string]string
}

// String identifies the resource in logs.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s/%s", d.Type, d.Name)
}

// Tag looks up a tag with a case-insensitive key match.
func (d Descriptor) Tag(key string) (string, bool) {
	return LookupTag(d.Tags, key)
}

// LookupTag performs a case-insensitive key lookup in tags.
func LookupTag(tags map[string]string, key string) (string, bool) {
	if v, ok := tags[key]; ok {
		return v, true
	}
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// DownscalerTags returns only the tags carrying the downscaler prefix, with
// keys lower-cased.
func DownscalerTags(tags map[string]string) map[string]string {
	return lo.MapKeys(
		lo.PickBy(tags, func(k, _ string) bool {
			return len(k) >= len(wellknown.TagPrefix) && strings.EqualFold(k[:len(wellknown.TagPrefix)], wellknown.TagPrefix)
		}),
		func(_ string, k string) string { return strings.ToLower(k) },
	)
}
