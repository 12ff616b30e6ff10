/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package config holds the downscaler runtime configuration. Values are layered
// from defaults, an optional YAML file, DOWNSCALER_* environment variables and
// finally command-line flags.
package config

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/ardikabs/downscaler/internal/wellknown"
	"github.com/ardikabs/downscaler/pkg/awsutil"
	"github.com/ardikabs/downscaler/pkg/k8sutil"
)

// Resource types understood by the downscaler.
const (
	ResourceASG        = "asg"
	ResourceECS        = "ecs"
	ResourceEKS        = "eks"
	ResourceEC2        = "ec2"
	ResourceRDS        = "rds"
	ResourceDeployment = "deployment"
	ResourceNoop       = "noop"
)

// KnownResources lists every resource type in registration order.
var KnownResources = []string{
	ResourceASG, ResourceECS, ResourceEKS, ResourceEC2, ResourceRDS, ResourceDeployment, ResourceNoop,
}

// Log formats.
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Config holds runtime configuration.
type Config struct {
	// Engine settings
	DryRun          bool
	DefaultUptime   string
	DefaultDowntime string
	GracePeriod     time.Duration
	DowntimeScale   int

	// Loop settings
	Once        bool
	Interval    time.Duration
	Concurrency int

	// Resource selection
	IncludeResources []string // resource types
	ExcludeResources []string // resource names or glob patterns

	// Connectors
	AWS        awsutil.AWSConnectorConfig
	Kubernetes k8sutil.K8SConnectorConfig
	Namespaces []string // namespaces scanned by the deployment provider, empty means all

	// Outer surfaces
	MetricsAddr     string
	SlackWebhookURL string
	SlackChannel    string
	TelegramToken   string
	TelegramChatID  string

	// Logging
	Debug     bool
	LogFormat string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		DefaultUptime:    wellknown.DefaultUptime,
		DefaultDowntime:  wellknown.DefaultDowntime,
		GracePeriod:      wellknown.DefaultGracePeriod,
		DowntimeScale:    wellknown.DefaultDowntimeScale,
		Interval:         wellknown.DefaultInterval,
		Concurrency:      wellknown.DefaultConcurrency,
		IncludeResources: []string{ResourceASG, ResourceECS},
		MetricsAddr:      wellknown.DefaultMetricsAddr,
		LogFormat:        LogFormatJSON,
	}
}

// Validate checks if configuration is valid. Schedule strings are validated
// separately when the policy defaults are built.
func (c *Config) Validate() error {
	if c.DowntimeScale < 0 || c.DowntimeScale > 100 {
		return fmt.Errorf("downtime scale must be between 0 and 100, got %d", c.DowntimeScale)
	}

	if c.GracePeriod < 0 {
		return fmt.Errorf("grace period must be non-negative, got %s", c.GracePeriod)
	}

	if !c.Once && c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}

	for _, t := range c.IncludeResources {
		if !slices.Contains(KnownResources, t) {
			return fmt.Errorf("unknown resource type %q, expected one of %s", t, strings.Join(KnownResources, ", "))
		}
	}

	for _, pattern := range c.ExcludeResources {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	if (c.TelegramToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("telegram token and chat id must be set together")
	}

	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatConsole {
		return fmt.Errorf("log format must be %q or %q", LogFormatJSON, LogFormatConsole)
	}

	return nil
}

// Enabled reports whether a resource type is selected. An empty include list
// selects every type except noop, which must be named explicitly.
func (c *Config) Enabled(resourceType string) bool {
	if len(c.IncludeResources) == 0 {
		return resourceType != ResourceNoop
	}
	return slices.Contains(c.IncludeResources, resourceType)
}

// ShouldProcess reports whether a resource passes the include and exclude
// filters. Exclude entries match the resource name exactly or as a glob.
func (c *Config) ShouldProcess(resourceType, name string) bool {
	if !c.Enabled(resourceType) {
		return false
	}

	for _, pattern := range c.ExcludeResources {
		if pattern == name {
			return false
		}
		if ok, _ := path.Match(pattern, name); ok {
			return false
		}
	}

	return true
}
