/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package app wires configuration, providers, notifiers and the controller
// into the downscaler process.
package app

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/ardikabs/downscaler/internal/config"
	"github.com/ardikabs/downscaler/internal/controller"
	"github.com/ardikabs/downscaler/internal/policy"
)

// Run starts the downscaler and blocks until ctx is done, or until the single
// cycle finished when cfg.Once is set.
func Run(ctx context.Context, log logr.Logger, cfg *config.Config) error {
	setupLog := log.WithName("setup")

	defaults, err := policy.NewDefaults(cfg.DefaultUptime, cfg.DefaultDowntime, cfg.DowntimeScale)
	if err != nil {
		return fmt.Errorf("invalid default schedule: %w", err)
	}

	registry, err := BuildRegistry(ctx, setupLog, cfg)
	if err != nil {
		setupLog.Error(err, "unable to set up providers")
		return err
	}

	notifier, err := BuildNotifier(log.WithName("notification"), cfg)
	if err != nil {
		setupLog.Error(err, "unable to set up notifications")
		return err
	}

	if cfg.MetricsAddr != "" && cfg.MetricsAddr != "0" {
		serveMetrics(ctx, log.WithName("metrics"), cfg.MetricsAddr)
	}

	opts := controller.Options{
		Registry:    registry,
		Defaults:    defaults,
		GracePeriod: cfg.GracePeriod,
		DryRun:      cfg.DryRun,
		Concurrency: cfg.Concurrency,
		Filter:      cfg,
		Notifier:    notifier,
		Clock:       clock.RealClock{},
	}

	setupLog.Info("starting downscaler",
		"providers", registry.List(),
		"dryRun", cfg.DryRun,
		"once", cfg.Once,
		"interval", cfg.Interval,
		"defaultUptime", cfg.DefaultUptime,
		"defaultDowntime", cfg.DefaultDowntime,
		"downtimeScale", cfg.DowntimeScale,
		"gracePeriod", cfg.GracePeriod,
	)

	return controller.New(log.WithName("controller"), opts).Run(ctx, cfg.Interval, cfg.Once)
}
