/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package controller runs evaluation cycles: it lists every provider's
// resources, resolves their policy, evaluates the schedule and applies the
// planned capacity change.
package controller

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"k8s.io/utils/clock"

	"github.com/ardikabs/downscaler/internal/evaluator"
	"github.com/ardikabs/downscaler/internal/metrics"
	"github.com/ardikabs/downscaler/internal/notification"
	"github.com/ardikabs/downscaler/internal/planner"
	"github.com/ardikabs/downscaler/internal/policy"
	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/recovery"
	"github.com/ardikabs/downscaler/internal/resource"
	"github.com/ardikabs/downscaler/internal/wellknown"
)

// Filter decides whether a listed resource is handled at all.
type Filter interface {
	ShouldProcess(resourceType, name string) bool
}

// Options configures a Controller.
type Options struct {
	Registry    *provider.Registry
	Defaults    policy.Defaults
	GracePeriod time.Duration
	DryRun      bool
	Concurrency int

	// Optional
	Filter   Filter
	Notifier notification.Notifier
	Clock    clock.Clock
}

// Controller evaluates and applies schedules across all registered providers.
type Controller struct {
	log         logr.Logger
	clock       clock.Clock
	registry    *provider.Registry
	resolver    *policy.Resolver
	evaluator   *evaluator.Evaluator
	planner     *planner.Planner
	tracker     *recovery.Tracker
	filter      Filter
	notifier    notification.Notifier
	concurrency int64
	dryRun      bool
}

// New creates a controller.
func New(log logr.Logger, opts Options) *Controller {
	c := &Controller{
		log:         log,
		clock:       opts.Clock,
		registry:    opts.Registry,
		resolver:    policy.NewResolver(opts.Defaults),
		evaluator:   evaluator.New(opts.GracePeriod),
		planner:     planner.New(opts.DryRun),
		tracker:     recovery.NewTracker(),
		filter:      opts.Filter,
		notifier:    opts.Notifier,
		concurrency: int64(opts.Concurrency),
		dryRun:      opts.DryRun,
	}
	if c.clock == nil {
		c.clock = clock.RealClock{}
	}
	if c.concurrency < 1 {
		c.concurrency = wellknown.DefaultConcurrency
	}
	return c
}

// Outcome is what happened to one resource during a cycle.
type Outcome struct {
	Resource resource.Descriptor
	Result   evaluator.Result
	Action   planner.Action
	// Skipped is set when the resource was not evaluated, with the reason.
	Skipped string
	Err     error
}

// Report summarizes one cycle.
type Report struct {
	CycleID  string
	Time     time.Time
	Outcomes []Outcome
	// ProviderErrors holds List failures keyed by provider type.
	ProviderErrors map[string]error
}

// Failed reports whether any resource or provider failed.
func (r Report) Failed() bool {
	if len(r.ProviderErrors) > 0 {
		return true
	}
	for _, o := range r.Outcomes {
		if o.Err != nil {
			return true
		}
	}
	return false
}

// RunCycle performs one evaluation cycle. Every resource of the cycle is
// evaluated against the same instant. Failures are isolated per resource and
// reported, never returned; only context cancellation is.
func (c *Controller) RunCycle(ctx context.Context) (Report, error) {
	start := c.clock.Now()
	report := Report{
		CycleID:        uuid.New().String()[:8],
		Time:           start,
		ProviderErrors: map[string]error{},
	}
	log := c.log.WithValues("cycle", report.CycleID)
	log.Info("starting cycle", "time", start, "dryRun", c.dryRun)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = semaphore.NewWeighted(c.concurrency)
	)

	var ctxErr error
	for _, prov := range c.registry.Providers() {
		if err := sem.Acquire(ctx, 1); err != nil {
			ctxErr = err
			break
		}

		wg.Add(1)
		go func(prov provider.Provider) {
			defer wg.Done()
			defer sem.Release(1)

			outcomes, err := c.processProvider(ctx, log.WithValues("provider", prov.Type()), prov, start)

			mu.Lock()
			defer mu.Unlock()
			report.Outcomes = append(report.Outcomes, outcomes...)
			if err != nil {
				report.ProviderErrors[prov.Type()] = err
			}
		}(prov)
	}
	wg.Wait()

	sort.SliceStable(report.Outcomes, func(i, j int) bool {
		a, b := report.Outcomes[i].Resource, report.Outcomes[j].Resource
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.ID < b.ID
	})

	c.finishCycle(ctx, log, report)

	if ctxErr == nil {
		ctxErr = ctx.Err()
	}
	return report, ctxErr
}

func (c *Controller) processProvider(ctx context.Context, log logr.Logger, prov provider.Provider, now time.Time) ([]Outcome, error) {
	resources, listErr := prov.List(ctx)
	if listErr != nil {
		classification := recovery.ClassifyError(listErr)
		metrics.ProviderErrorsTotal.WithLabelValues(prov.Type(), provider.OpList, string(classification)).Inc()
		log.Error(listErr, "failed to list resources", "classification", classification, "listed", len(resources))
		if len(resources) == 0 {
			return nil, listErr
		}
	}
	metrics.ResourcesManaged.WithLabelValues(prov.Type()).Set(float64(len(resources)))
	log.V(1).Info("listed resources", "count", len(resources))

	outcomes := make([]Outcome, 0, len(resources))
	for _, d := range resources {
		if ctx.Err() != nil {
			break
		}
		outcomes = append(outcomes, c.processResource(ctx, log.WithValues("resource", d.String()), prov, d, now))
	}
	return outcomes, listErr
}

func (c *Controller) processResource(ctx context.Context, log logr.Logger, prov provider.Provider, d resource.Descriptor, now time.Time) Outcome {
	outcome := Outcome{Resource: d}

	if c.filter != nil && !c.filter.ShouldProcess(d.Type, d.Name) {
		log.V(1).Info("skipping resource, not selected")
		outcome.Skipped = "not selected"
		return outcome
	}

	key := d.Type + "/" + d.ID
	if strategy := c.tracker.Strategy(key, now); !strategy.ShouldRetry {
		log.V(1).Info("skipping resource, backing off", "retryAfter", strategy.RetryAfter, "reason", strategy.Reason)
		outcome.Skipped = strategy.Reason
		return outcome
	}

	p, warnings := c.resolver.Resolve(d.Tags, now)
	for _, w := range warnings {
		metrics.WarningsTotal.WithLabelValues(d.Type, "override").Inc()
		log.Info("ignoring invalid tag override", "warning", w.Error())
	}

	outcome.Result = c.evaluator.Evaluate(d, p, now)
	metrics.EvaluationsTotal.WithLabelValues(d.Type, string(outcome.Result.State), string(outcome.Result.Reason)).Inc()

	action, err := c.planner.Plan(d, outcome.Result)
	outcome.Action = action
	if errors.Is(err, planner.ErrRestoreAmbiguous) {
		metrics.WarningsTotal.WithLabelValues(d.Type, "restore_ambiguous").Inc()
		log.Info("cannot restore, no original capacity recorded", "capacity", d.Capacity, "result", outcome.Result.String())
		outcome.Skipped = err.Error()
		return outcome
	}

	if !action.Mutates() {
		log.V(1).Info("no change", "capacity", d.Capacity, "result", outcome.Result.String())
	} else {
		log.Info(action.String(), "capacity", d.Capacity, "result", outcome.Result.String(), "dryRun", c.dryRun)
	}

	if err := c.planner.Apply(ctx, prov, d, action); err != nil {
		classification := recovery.ClassifyError(err)
		strategy := c.tracker.RecordFailure(key, err, now)
		metrics.ProviderErrorsTotal.WithLabelValues(d.Type, operation(err), string(classification)).Inc()
		log.Error(err, "failed to apply action", "action", action.String(), "classification", classification, "retry", strategy.Reason)
		outcome.Err = err
		return outcome
	}

	c.tracker.RecordSuccess(key)
	if action.Mutates() {
		metrics.ActionsTotal.WithLabelValues(d.Type, string(action.Kind), boolLabel(c.dryRun)).Inc()
	}
	return outcome
}

func (c *Controller) finishCycle(ctx context.Context, log logr.Logger, report Report) {
	elapsed := c.clock.Since(report.Time)
	result := "success"
	if report.Failed() {
		result = "failure"
	}

	metrics.CycleDuration.Observe(elapsed.Seconds())
	metrics.CyclesTotal.WithLabelValues(result).Inc()
	metrics.LastCycleTimestamp.SetToCurrentTime()

	summary := summarize(report, c.dryRun)
	log.Info("cycle finished", "duration", elapsed, "resources", len(report.Outcomes), "actions", len(summary.Actions), "failures", len(summary.Failures))

	if c.notifier == nil || summary.Empty() {
		return
	}
	if err := c.notifier.Notify(ctx, summary); err != nil {
		log.Error(err, "failed to send notification")
	}
}

func summarize(report Report, dryRun bool) notification.Summary {
	summary := notification.Summary{CycleID: report.CycleID, Time: report.Time, DryRun: dryRun}

	types := make([]string, 0, len(report.ProviderErrors))
	for t := range report.ProviderErrors {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		err := report.ProviderErrors[t]
		summary.Failures = append(summary.Failures, notification.FailureRecord{
			Resource:       t,
			Classification: string(recovery.ClassifyError(err)),
			Error:          err.Error(),
		})
	}

	for _, o := range report.Outcomes {
		switch {
		case o.Err != nil:
			summary.Failures = append(summary.Failures, notification.FailureRecord{
				Resource:       o.Resource.String(),
				Classification: string(recovery.ClassifyError(o.Err)),
				Error:          o.Err.Error(),
			})
		case o.Action.Mutates():
			summary.Actions = append(summary.Actions, notification.ActionRecord{
				Resource: o.Resource.String(),
				Action:   o.Action.String(),
				Reason:   string(o.Result.Reason),
			})
		}
	}
	return summary
}

func operation(err error) string {
	var perr *provider.Error
	if errors.As(err, &perr) {
		return perr.Op
	}
	return "unknown"
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
