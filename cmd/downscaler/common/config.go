/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package common

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/ardikabs/downscaler/internal/config"
)

// ConfigFlags binds the engine and connector flags to a Config. Only the
// flags set on the command line are copied onto the layered configuration.
type ConfigFlags struct {
	values config.Config
}

// NewConfigFlags returns flags defaulting to config.DefaultConfig.
func NewConfigFlags() *ConfigFlags {
	return &ConfigFlags{values: config.DefaultConfig()}
}

// AddEngineFlags registers the schedule flags shared by run and preview.
func (f *ConfigFlags) AddEngineFlags(fs *pflag.FlagSet) {
	v := &f.values
	fs.StringVar(&v.DefaultUptime, "default-uptime", v.DefaultUptime, "Default uptime schedule, e.g. \"Mon-Fri 07:30-20:30 Europe/Berlin\"")
	fs.StringVar(&v.DefaultDowntime, "default-downtime", v.DefaultDowntime, "Default downtime schedule, e.g. \"Sat-Sun 00:00-23:59 UTC\"")
	fs.IntVar(&v.DowntimeScale, "downtime-scale", v.DowntimeScale, "Percentage of the original capacity kept during downtime (0-100)")
	fs.DurationVar(&v.GracePeriod, "grace-period", v.GracePeriod, "Resources younger than this are never scaled down")
}

// AddRunFlags registers the flags of the run command.
func (f *ConfigFlags) AddRunFlags(fs *pflag.FlagSet) {
	v := &f.values
	f.AddEngineFlags(fs)

	fs.BoolVar(&v.DryRun, "dry-run", v.DryRun, "Log the planned changes without applying them")
	fs.BoolVar(&v.Once, "once", v.Once, "Run a single evaluation cycle and exit")
	fs.DurationVar(&v.Interval, "interval", v.Interval, "Time between evaluation cycles")
	fs.IntVar(&v.Concurrency, "concurrency", v.Concurrency, "Number of providers processed in parallel")
	fs.StringSliceVar(&v.IncludeResources, "include-resources", v.IncludeResources, "Resource types to manage ("+strings.Join(config.KnownResources, ", ")+")")
	fs.StringSliceVar(&v.ExcludeResources, "exclude-resources", v.ExcludeResources, "Resource names or glob patterns to skip")

	fs.StringVar(&v.AWS.Region, "region", v.AWS.Region, "AWS region")
	fs.StringVar(&v.AWS.Profile, "profile", v.AWS.Profile, "AWS shared config profile")
	fs.StringVar(&v.AWS.AssumeRoleArn, "assume-role-arn", v.AWS.AssumeRoleArn, "IAM role to assume for every AWS call")
	fs.StringVar(&v.AWS.ExternalID, "external-id", v.AWS.ExternalID, "External ID used when assuming the role")

	fs.StringVar(&v.Kubernetes.KubeconfigPath, "kubeconfig", v.Kubernetes.KubeconfigPath, "Path to kubeconfig file (defaults to in-cluster config, then $KUBECONFIG or ~/.kube/config)")
	fs.StringVar(&v.Kubernetes.Context, "kube-context", v.Kubernetes.Context, "Kubeconfig context to use")
	fs.StringVar(&v.Kubernetes.ClusterName, "eks-cluster", v.Kubernetes.ClusterName, "EKS cluster to authenticate against with an STS token")
	fs.BoolVar(&v.Kubernetes.UseEKSToken, "use-eks-token", v.Kubernetes.UseEKSToken, "Authenticate to Kubernetes with an EKS token derived from the AWS credentials")
	fs.StringSliceVar(&v.Namespaces, "namespace", v.Namespaces, "Namespaces scanned for deployments (defaults to all)")

	fs.StringVar(&v.MetricsAddr, "metrics-bind-address", v.MetricsAddr, "The address the metric endpoint binds to, \"0\" disables it")
	fs.StringVar(&v.SlackWebhookURL, "slack-webhook-url", v.SlackWebhookURL, "Slack incoming webhook for cycle summaries")
	fs.StringVar(&v.SlackChannel, "slack-channel", v.SlackChannel, "Slack channel override")
	fs.StringVar(&v.TelegramToken, "telegram-token", v.TelegramToken, "Telegram bot token for cycle summaries")
	fs.StringVar(&v.TelegramChatID, "telegram-chat-id", v.TelegramChatID, "Telegram chat receiving cycle summaries")
}

var flagSetters = map[string]func(dst, src *config.Config){
	"default-uptime":       func(d, s *config.Config) { d.DefaultUptime = s.DefaultUptime },
	"default-downtime":     func(d, s *config.Config) { d.DefaultDowntime = s.DefaultDowntime },
	"downtime-scale":       func(d, s *config.Config) { d.DowntimeScale = s.DowntimeScale },
	"grace-period":         func(d, s *config.Config) { d.GracePeriod = s.GracePeriod },
	"dry-run":              func(d, s *config.Config) { d.DryRun = s.DryRun },
	"once":                 func(d, s *config.Config) { d.Once = s.Once },
	"interval":             func(d, s *config.Config) { d.Interval = s.Interval },
	"concurrency":          func(d, s *config.Config) { d.Concurrency = s.Concurrency },
	"include-resources":    func(d, s *config.Config) { d.IncludeResources = s.IncludeResources },
	"exclude-resources":    func(d, s *config.Config) { d.ExcludeResources = s.ExcludeResources },
	"region":               func(d, s *config.Config) { d.AWS.Region = s.AWS.Region },
	"profile":              func(d, s *config.Config) { d.AWS.Profile = s.AWS.Profile },
	"assume-role-arn":      func(d, s *config.Config) { d.AWS.AssumeRoleArn = s.AWS.AssumeRoleArn },
	"external-id":          func(d, s *config.Config) { d.AWS.ExternalID = s.AWS.ExternalID },
	"kubeconfig":           func(d, s *config.Config) { d.Kubernetes.KubeconfigPath = s.Kubernetes.KubeconfigPath },
	"kube-context":         func(d, s *config.Config) { d.Kubernetes.Context = s.Kubernetes.Context },
	"eks-cluster":          func(d, s *config.Config) { d.Kubernetes.ClusterName = s.Kubernetes.ClusterName },
	"use-eks-token":        func(d, s *config.Config) { d.Kubernetes.UseEKSToken = s.Kubernetes.UseEKSToken },
	"namespace":            func(d, s *config.Config) { d.Namespaces = s.Namespaces },
	"metrics-bind-address": func(d, s *config.Config) { d.MetricsAddr = s.MetricsAddr },
	"slack-webhook-url":    func(d, s *config.Config) { d.SlackWebhookURL = s.SlackWebhookURL },
	"slack-channel":        func(d, s *config.Config) { d.SlackChannel = s.SlackChannel },
	"telegram-token":       func(d, s *config.Config) { d.TelegramToken = s.TelegramToken },
	"telegram-chat-id":     func(d, s *config.Config) { d.TelegramChatID = s.TelegramChatID },
}

// LoadConfig layers defaults, the config file, DOWNSCALER_* variables and the
// flags set on fs, then validates the result.
func LoadConfig(opts *RootOptions, fs *pflag.FlagSet, f *ConfigFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.LogFormat = DefaultLogFormat()

	if opts.ConfigFile != "" {
		if err := cfg.LoadFile(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()

	fs.Visit(func(flag *pflag.Flag) {
		if set, ok := flagSetters[flag.Name]; ok && f != nil {
			set(&cfg, &f.values)
		}
		switch flag.Name {
		case "debug":
			cfg.Debug = opts.Debug
		case "log-format":
			cfg.LogFormat = opts.LogFormat
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
