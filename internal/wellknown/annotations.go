/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package wellknown

import "strings"

// AnnotationPrefix is the Kubernetes annotation prefix that maps onto TagPrefix.
// "downscaler/uptime" on a Deployment is read as the "downscaler:uptime" tag.
const AnnotationPrefix = "downscaler/"

// AnnotationForTag converts a logical tag key into its Kubernetes annotation key.
// Keys outside the downscaler namespace are returned unchanged.
func AnnotationForTag(key string) string {
	if len(key) >= len(TagPrefix) && strings.EqualFold(key[:len(TagPrefix)], TagPrefix) {
		return AnnotationPrefix + key[len(TagPrefix):]
	}
	return key
}

// TagForAnnotation converts a Kubernetes annotation key into its logical tag key.
// The second return value is false for annotations outside the downscaler namespace.
func TagForAnnotation(key string) (string, bool) {
	if len(key) >= len(AnnotationPrefix) && strings.EqualFold(key[:len(AnnotationPrefix)], AnnotationPrefix) {
		return TagPrefix + key[len(AnnotationPrefix):], true
	}
	return "", false
}
