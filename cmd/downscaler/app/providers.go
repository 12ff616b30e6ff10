/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"

	"github.com/ardikabs/downscaler/internal/config"
	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/provider/asg"
	"github.com/ardikabs/downscaler/internal/provider/deployment"
	"github.com/ardikabs/downscaler/internal/provider/ec2"
	"github.com/ardikabs/downscaler/internal/provider/ecs"
	"github.com/ardikabs/downscaler/internal/provider/eks"
	"github.com/ardikabs/downscaler/internal/provider/noop"
	"github.com/ardikabs/downscaler/internal/provider/rds"
	"github.com/ardikabs/downscaler/pkg/awsutil"
	"github.com/ardikabs/downscaler/pkg/k8sutil"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
}

// BuildRegistry registers a provider for every enabled resource type. AWS and
// Kubernetes clients are only built when a provider needs them.
func BuildRegistry(ctx context.Context, log logr.Logger, cfg *config.Config) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	var awsCfg *aws.Config
	awsConfig := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsutil.BuildAWSConfig(ctx, &cfg.AWS)
		if err != nil {
			return aws.Config{}, fmt.Errorf("build AWS config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	for _, t := range config.KnownResources {
		if !cfg.Enabled(t) {
			continue
		}

		var p provider.Provider
		switch t {
		case config.ResourceASG, config.ResourceECS, config.ResourceEKS, config.ResourceEC2, config.ResourceRDS:
			c, err := awsConfig()
			if err != nil {
				return nil, err
			}
			p = newAWSProvider(t, c)
		case config.ResourceDeployment:
			k8sCfg := cfg.Kubernetes
			if k8sCfg.UseEKSToken {
				k8sCfg.AWS = &cfg.AWS
				if k8sCfg.Region == "" {
					k8sCfg.Region = cfg.AWS.Region
				}
			}
			c, err := k8sutil.BuildClient(ctx, &k8sCfg, scheme)
			if err != nil {
				return nil, fmt.Errorf("build kubernetes client: %w", err)
			}
			p = deployment.New(c, cfg.Namespaces...)
		case config.ResourceNoop:
			p = noop.New()
		}

		registry.Register(p)
		log.V(1).Info("registered provider", "type", t)
	}

	if len(registry.List()) == 0 {
		return nil, fmt.Errorf("no resource types enabled")
	}
	return registry, nil
}

func newAWSProvider(resourceType string, cfg aws.Config) provider.Provider {
	switch resourceType {
	case config.ResourceASG:
		return asg.New(cfg)
	case config.ResourceECS:
		return ecs.New(cfg)
	case config.ResourceEKS:
		return eks.New(cfg)
	case config.ResourceEC2:
		return ec2.New(cfg)
	default:
		return rds.New(cfg)
	}
}
