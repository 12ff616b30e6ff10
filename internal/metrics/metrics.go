/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CycleDuration tracks the duration of one evaluation cycle across all providers
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "downscaler_cycle_duration_seconds",
			Help:    "Duration of an evaluation cycle",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3m
		},
	)

	// CyclesTotal counts evaluation cycles by result
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downscaler_cycles_total",
			Help: "Total number of evaluation cycles",
		},
		[]string{"result"},
	)

	// LastCycleTimestamp records when the last cycle finished
	LastCycleTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "downscaler_last_cycle_timestamp_seconds",
			Help: "Unix time at which the last evaluation cycle finished",
		},
	)

	// ResourcesManaged tracks the number of resources seen per provider in the last cycle
	ResourcesManaged = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "downscaler_resources",
			Help: "Number of resources listed per provider in the last cycle",
		},
		[]string{"resource_type"},
	)

	// EvaluationsTotal counts evaluation results
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downscaler_evaluations_total",
			Help: "Total number of resource evaluations by state and reason",
		},
		[]string{"resource_type", "state", "reason"},
	)

	// ActionsTotal counts planned capacity changes
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downscaler_actions_total",
			Help: "Total number of capacity changes by kind",
		},
		[]string{"resource_type", "kind", "dry_run"},
	)

	// ProviderErrorsTotal counts provider failures by operation and classification
	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downscaler_provider_errors_total",
			Help: "Total number of provider failures",
		},
		[]string{"resource_type", "operation", "classification"},
	)

	// WarningsTotal counts per-resource warnings (malformed overrides, ambiguous restores)
	WarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downscaler_warnings_total",
			Help: "Total number of per-resource warnings",
		},
		[]string{"resource_type", "kind"},
	)
)
