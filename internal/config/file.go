/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package config

import (
	"fmt"
	"os"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/ardikabs/downscaler/internal/wellknown"
	"github.com/ardikabs/downscaler/pkg/envutil"
)

// File is the on-disk configuration layout. Unset fields leave the current
// value untouched.
type File struct {
	DryRun           *bool            `json:"dryRun,omitempty"`
	Interval         *metav1.Duration `json:"interval,omitempty"`
	DefaultUptime    *string          `json:"defaultUptime,omitempty"`
	DefaultDowntime  *string          `json:"defaultDowntime,omitempty"`
	GracePeriod      *metav1.Duration `json:"gracePeriod,omitempty"`
	DowntimeScale    *int             `json:"downtimeScale,omitempty"`
	Concurrency      *int             `json:"concurrency,omitempty"`
	IncludeResources []string         `json:"includeResources,omitempty"`
	ExcludeResources []string         `json:"excludeResources,omitempty"`

	AWS *struct {
		Region        string `json:"region,omitempty"`
		Profile       string `json:"profile,omitempty"`
		AssumeRoleArn string `json:"assumeRoleArn,omitempty"`
		ExternalID    string `json:"externalId,omitempty"`
	} `json:"aws,omitempty"`

	Kubernetes *struct {
		Kubeconfig  string   `json:"kubeconfig,omitempty"`
		Context     string   `json:"context,omitempty"`
		EKSCluster  string   `json:"eksCluster,omitempty"`
		Namespaces  []string `json:"namespaces,omitempty"`
		UseEKSToken bool     `json:"useEksToken,omitempty"`
	} `json:"kubernetes,omitempty"`

	MetricsAddr *string `json:"metricsAddr,omitempty"`

	Slack *struct {
		WebhookURL string `json:"webhookUrl,omitempty"`
		Channel    string `json:"channel,omitempty"`
	} `json:"slack,omitempty"`

	Telegram *struct {
		Token  string `json:"token,omitempty"`
		ChatID string `json:"chatId,omitempty"`
	} `json:"telegram,omitempty"`
}

// LoadFile reads a YAML configuration file and overlays it on c.
func (c *Config) LoadFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", filename, err)
	}

	c.apply(&f)
	return nil
}

func (c *Config) apply(f *File) {
	if f.DryRun != nil {
		c.DryRun = *f.DryRun
	}
	if f.Interval != nil {
		c.Interval = f.Interval.Duration
	}
	if f.DefaultUptime != nil {
		c.DefaultUptime = *f.DefaultUptime
	}
	if f.DefaultDowntime != nil {
		c.DefaultDowntime = *f.DefaultDowntime
	}
	if f.GracePeriod != nil {
		c.GracePeriod = f.GracePeriod.Duration
	}
	if f.DowntimeScale != nil {
		c.DowntimeScale = *f.DowntimeScale
	}
	if f.Concurrency != nil {
		c.Concurrency = *f.Concurrency
	}
	if f.IncludeResources != nil {
		c.IncludeResources = f.IncludeResources
	}
	if f.ExcludeResources != nil {
		c.ExcludeResources = f.ExcludeResources
	}

	if f.AWS != nil {
		c.AWS.Region = f.AWS.Region
		c.AWS.Profile = f.AWS.Profile
		c.AWS.AssumeRoleArn = f.AWS.AssumeRoleArn
		c.AWS.ExternalID = f.AWS.ExternalID
	}

	if k := f.Kubernetes; k != nil {
		c.Kubernetes.KubeconfigPath = k.Kubeconfig
		c.Kubernetes.Context = k.Context
		c.Kubernetes.ClusterName = k.EKSCluster
		c.Kubernetes.UseEKSToken = k.UseEKSToken
		c.Namespaces = k.Namespaces
	}

	if f.MetricsAddr != nil {
		c.MetricsAddr = *f.MetricsAddr
	}

	if f.Slack != nil {
		c.SlackWebhookURL = f.Slack.WebhookURL
		c.SlackChannel = f.Slack.Channel
	}

	if f.Telegram != nil {
		c.TelegramToken = f.Telegram.Token
		c.TelegramChatID = f.Telegram.ChatID
	}
}

// ApplyEnv overlays DOWNSCALER_* environment variables on c.
func (c *Config) ApplyEnv() {
	env := func(name string) string { return wellknown.EnvPrefix + name }

	c.DryRun = envutil.GetBool(env("DRY_RUN"), c.DryRun)
	c.Once = envutil.GetBool(env("ONCE"), c.Once)
	c.Interval = envutil.GetDuration(env("INTERVAL"), c.Interval)
	c.DefaultUptime = envutil.GetString(env("DEFAULT_UPTIME"), c.DefaultUptime)
	c.DefaultDowntime = envutil.GetString(env("DEFAULT_DOWNTIME"), c.DefaultDowntime)
	c.GracePeriod = envutil.GetDuration(env("GRACE_PERIOD"), c.GracePeriod)
	c.DowntimeScale = envutil.GetInt(env("DOWNTIME_SCALE"), c.DowntimeScale)
	c.Concurrency = envutil.GetInt(env("CONCURRENCY"), c.Concurrency)
	c.IncludeResources = envutil.GetStringSlice(env("INCLUDE_RESOURCES"), c.IncludeResources)
	c.ExcludeResources = envutil.GetStringSlice(env("EXCLUDE_RESOURCES"), c.ExcludeResources)

	c.AWS.Region = envutil.GetString("AWS_REGION", c.AWS.Region)
	c.AWS.Profile = envutil.GetString("AWS_PROFILE", c.AWS.Profile)
	c.AWS.AssumeRoleArn = envutil.GetString(env("ASSUME_ROLE_ARN"), c.AWS.AssumeRoleArn)
	c.AWS.ExternalID = envutil.GetString(env("EXTERNAL_ID"), c.AWS.ExternalID)

	c.Kubernetes.KubeconfigPath = envutil.GetString("KUBECONFIG", c.Kubernetes.KubeconfigPath)
	c.Kubernetes.ClusterName = envutil.GetString(env("EKS_CLUSTER"), c.Kubernetes.ClusterName)
	c.Namespaces = envutil.GetStringSlice(env("NAMESPACES"), c.Namespaces)

	c.MetricsAddr = envutil.GetString(env("METRICS_ADDR"), c.MetricsAddr)
	c.SlackWebhookURL = envutil.GetString(env("SLACK_WEBHOOK_URL"), c.SlackWebhookURL)
	c.SlackChannel = envutil.GetString(env("SLACK_CHANNEL"), c.SlackChannel)
	c.TelegramToken = envutil.GetString(env("TELEGRAM_TOKEN"), c.TelegramToken)
	c.TelegramChatID = envutil.GetString(env("TELEGRAM_CHAT_ID"), c.TelegramChatID)

	c.Debug = envutil.GetBool(env("DEBUG"), c.Debug)
	c.LogFormat = envutil.GetString(env("LOG_FORMAT"), c.LogFormat)
}
