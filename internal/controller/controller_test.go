/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	clocktesting "k8s.io/utils/clock/testing"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/ardikabs/downscaler/internal/evaluator"
	"github.com/ardikabs/downscaler/internal/notification"
	"github.com/ardikabs/downscaler/internal/planner"
	"github.com/ardikabs/downscaler/internal/policy"
	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/provider/noop"
	"github.com/ardikabs/downscaler/internal/resource"
	"github.com/ardikabs/downscaler/internal/wellknown"
)

var (
	// Saturday, outside the default uptime.
	weekend = time.Date(2024, 4, 6, 12, 0, 0, 0, time.UTC)
	// Monday, inside the default uptime.
	weekday = time.Date(2024, 4, 8, 10, 0, 0, 0, time.UTC)
)

type recordingNotifier struct {
	mu        sync.Mutex
	summaries []notification.Summary
}

func (n *recordingNotifier) Notify(_ context.Context, s notification.Summary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, s)
	return nil
}

func (n *recordingNotifier) Summaries() []notification.Summary {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Summary(nil), n.summaries...)
}

type nameFilter map[string]bool

func (f nameFilter) ShouldProcess(_, name string) bool {
	return !f[name]
}

// countingProvider counts List calls, one per cycle.
type countingProvider struct {
	*noop.Provider
	lists atomic.Int32
}

func (p *countingProvider) List(ctx context.Context) ([]resource.Descriptor, error) {
	p.lists.Add(1)
	return p.Provider.List(ctx)
}

// partialProvider lists its resources but also reports a listing failure.
type partialProvider struct {
	*noop.Provider
	err error
}

func (p *partialProvider) List(ctx context.Context) ([]resource.Descriptor, error) {
	list, _ := p.Provider.List(ctx)
	return list, p.err
}

func testLogger() logr.Logger {
	return zap.New(zap.WriteTo(ginkgo.GinkgoWriter), zap.UseDevMode(true))
}

func mustDefaults(uptime, downtime string, scale int) policy.Defaults {
	d, err := policy.NewDefaults(uptime, downtime, scale)
	Expect(err).NotTo(HaveOccurred())
	return d
}

func callStrings(p *noop.Provider) []string {
	var out []string
	for _, c := range p.Calls() {
		out = append(out, c.String())
	}
	return out
}

var _ = ginkgo.Describe("Controller", func() {
	var (
		ctx       context.Context
		fakeClock *clocktesting.FakeClock
		registry  *provider.Registry
		opts      Options
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		fakeClock = clocktesting.NewFakeClock(weekend)
		registry = provider.NewRegistry()
		opts = Options{
			Registry:    registry,
			Defaults:    mustDefaults("Mon-Fri 08:00-18:00 UTC", "", 0),
			Concurrency: 2,
			Clock:       fakeClock,
		}
	})

	newController := func() *Controller {
		return New(testLogger(), opts)
	}

	ginkgo.Context("when a resource is outside its uptime", func() {
		var asg *noop.Provider

		ginkgo.BeforeEach(func() {
			asg = noop.NewWithType("asg", resource.Descriptor{ID: "web", Name: "web", Capacity: 3})
			registry.Register(asg)
		})

		ginkgo.It("scales down and records the original capacity", func() {
			report, err := newController().RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.CycleID).To(HaveLen(8))
			Expect(report.Time).To(Equal(weekend))
			Expect(report.Failed()).To(BeFalse())

			Expect(report.Outcomes).To(HaveLen(1))
			o := report.Outcomes[0]
			Expect(o.Result.State).To(Equal(evaluator.StateDown))
			Expect(o.Result.Reason).To(Equal(evaluator.ReasonOutsideUptime))
			Expect(o.Action.Kind).To(Equal(planner.ScaleTo))

			Expect(callStrings(asg)).To(Equal([]string{
				"write-tag web downscaler:original-capacity=3",
				"scale web=0",
			}))
		})

		ginkgo.It("restores the original capacity once uptime starts", func() {
			c := newController()
			_, err := c.RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			asg.ResetCalls()

			fakeClock.SetTime(weekday)
			report, err := c.RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcomes[0].Action.Kind).To(Equal(planner.RestoreTo))

			Expect(callStrings(asg)).To(Equal([]string{
				"scale web=3",
				"delete-tag web downscaler:original-capacity",
			}))
			web, _ := asg.Get("web")
			Expect(web.Capacity).To(Equal(3))
			Expect(web.Tags).NotTo(HaveKey(wellknown.TagOriginalCapacity))
		})

		ginkgo.It("is idempotent within the same window", func() {
			c := newController()
			_, err := c.RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			asg.ResetCalls()

			fakeClock.Step(time.Minute)
			report, err := c.RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcomes[0].Action.Mutates()).To(BeFalse())
			Expect(asg.Calls()).To(BeEmpty())
		})

		ginkgo.It("performs no mutation in dry-run", func() {
			opts.DryRun = true
			report, err := newController().RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcomes[0].Action.Kind).To(Equal(planner.ScaleTo))
			Expect(asg.Calls()).To(BeEmpty())
		})

		ginkgo.It("skips resources rejected by the filter", func() {
			opts.Filter = nameFilter{"web": true}
			report, err := newController().RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcomes[0].Skipped).To(Equal("not selected"))
			Expect(asg.Calls()).To(BeEmpty())
		})

		ginkgo.It("honours tag overrides", func() {
			asg = noop.NewWithType("asg", resource.Descriptor{
				ID: "web", Name: "web", Capacity: 4,
				Tags: map[string]string{"Downscaler:Exclude": "true"},
			})
			registry.Register(asg)

			report, err := newController().RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcomes[0].Result.Reason).To(Equal(evaluator.ReasonExcluded))
			Expect(asg.Calls()).To(BeEmpty())
		})
	})

	ginkgo.It("leaves a zero-capacity resource without recorded original untouched", func() {
		fakeClock.SetTime(weekday)
		svc := noop.NewWithType("ecs", resource.Descriptor{ID: "prod/api", Name: "api", Capacity: 0})
		registry.Register(svc)

		report, err := newController().RunCycle(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Outcomes[0].Skipped).To(Equal(planner.ErrRestoreAmbiguous.Error()))
		Expect(report.Failed()).To(BeFalse())
		Expect(svc.Calls()).To(BeEmpty())
	})

	ginkgo.It("isolates provider failures", func() {
		broken := noop.NewWithType("ecs", resource.Descriptor{ID: "prod/api", Name: "api", Capacity: 2})
		broken.FailOn(provider.OpList, errors.New("throttled"))
		healthy := noop.NewWithType("asg", resource.Descriptor{ID: "web", Name: "web", Capacity: 2})
		registry.Register(broken)
		registry.Register(healthy)

		report, err := newController().RunCycle(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Failed()).To(BeTrue())
		Expect(report.ProviderErrors).To(HaveKey("ecs"))
		Expect(report.Outcomes).To(HaveLen(1))
		Expect(callStrings(healthy)).To(ContainElement("scale web=0"))
	})

	ginkgo.It("processes the resources listed before a partial listing failure", func() {
		svc := noop.NewWithType("ecs", resource.Descriptor{ID: "prod/api", Name: "api", Capacity: 2})
		registry.Register(&partialProvider{Provider: svc, err: errors.New("cluster broken: AccessDeniedException")})

		report, err := newController().RunCycle(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Failed()).To(BeTrue())
		Expect(report.ProviderErrors).To(HaveKey("ecs"))
		Expect(report.Outcomes).To(HaveLen(1))
		Expect(callStrings(svc)).To(ContainElement("scale prod/api=0"))
	})

	ginkgo.It("orders outcomes by type and id", func() {
		registry.Register(noop.NewWithType("rds", resource.Descriptor{ID: "db", Name: "db", Capacity: 1}))
		registry.Register(noop.NewWithType("asg",
			resource.Descriptor{ID: "b", Name: "b", Capacity: 1},
			resource.Descriptor{ID: "a", Name: "a", Capacity: 1},
		))

		report, err := newController().RunCycle(ctx)
		Expect(err).NotTo(HaveOccurred())

		var got []string
		for _, o := range report.Outcomes {
			got = append(got, o.Resource.Type+"/"+o.Resource.ID)
		}
		Expect(got).To(Equal([]string{"asg/a", "asg/b", "rds/db"}))
	})

	ginkgo.Context("when applying fails permanently", func() {
		var asg *noop.Provider

		ginkgo.BeforeEach(func() {
			asg = noop.NewWithType("asg", resource.Descriptor{ID: "web", Name: "web", Capacity: 3})
			asg.FailOn(provider.OpScale, errors.New("access denied"))
			registry.Register(asg)
		})

		ginkgo.It("backs off before retrying", func() {
			c := newController()
			report, err := c.RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcomes[0].Err).To(HaveOccurred())

			var perr *provider.Error
			Expect(errors.As(report.Outcomes[0].Err, &perr)).To(BeTrue())
			Expect(perr.Op).To(Equal(provider.OpScale))

			fakeClock.Step(30 * time.Second)
			report, err = c.RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcomes[0].Skipped).To(ContainSubstring("backing off"))

			fakeClock.Step(31 * time.Second)
			asg.FailOn(provider.OpScale, nil)
			report, err = c.RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcomes[0].Err).NotTo(HaveOccurred())
			Expect(report.Outcomes[0].Skipped).To(BeEmpty())

			web, _ := asg.Get("web")
			Expect(web.Capacity).To(Equal(0))
		})
	})

	ginkgo.Context("with a notifier", func() {
		var notifier *recordingNotifier

		ginkgo.BeforeEach(func() {
			notifier = &recordingNotifier{}
			opts.Notifier = notifier
		})

		ginkgo.It("sends a summary of the changes", func() {
			registry.Register(noop.NewWithType("asg", resource.Descriptor{ID: "web", Name: "web", Capacity: 3}))

			report, err := newController().RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())

			summaries := notifier.Summaries()
			Expect(summaries).To(HaveLen(1))
			Expect(summaries[0].CycleID).To(Equal(report.CycleID))
			Expect(summaries[0].Actions).To(ConsistOf(notification.ActionRecord{
				Resource: "asg/web",
				Action:   "scale to 0, record original capacity 3",
				Reason:   string(evaluator.ReasonOutsideUptime),
			}))
			Expect(summaries[0].Failures).To(BeEmpty())
		})

		ginkgo.It("stays silent when nothing changed", func() {
			fakeClock.SetTime(weekday)
			registry.Register(noop.NewWithType("asg", resource.Descriptor{ID: "web", Name: "web", Capacity: 3}))

			_, err := newController().RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.Summaries()).To(BeEmpty())
		})

		ginkgo.It("reports provider failures", func() {
			broken := noop.NewWithType("ecs")
			broken.FailOn(provider.OpList, errors.New("ClusterNotFoundException: not found"))
			registry.Register(broken)

			_, err := newController().RunCycle(ctx)
			Expect(err).NotTo(HaveOccurred())

			summaries := notifier.Summaries()
			Expect(summaries).To(HaveLen(1))
			Expect(summaries[0].Failures).To(HaveLen(1))
			Expect(summaries[0].Failures[0].Resource).To(Equal("ecs"))
			Expect(summaries[0].Failures[0].Classification).To(Equal("Permanent"))
		})
	})

	ginkgo.Describe("Run", func() {
		ginkgo.It("runs a single cycle in once mode", func() {
			registry.Register(noop.NewWithType("asg", resource.Descriptor{ID: "web", Name: "web", Capacity: 3}))
			Expect(newController().Run(ctx, time.Minute, true)).To(Succeed())
		})

		ginkgo.It("reports failures in once mode", func() {
			broken := noop.NewWithType("asg")
			broken.FailOn(provider.OpList, errors.New("throttled"))
			registry.Register(broken)

			err := newController().Run(ctx, time.Minute, true)
			Expect(err).To(MatchError(ErrCycleFailed))
		})

		ginkgo.It("rejects a non-positive interval", func() {
			Expect(newController().Run(ctx, 0, false)).To(MatchError(ContainSubstring("invalid interval")))
		})

		ginkgo.It("evaluates on every interval until cancelled", func() {
			counting := &countingProvider{Provider: noop.NewWithType("asg", resource.Descriptor{ID: "web", Name: "web", Capacity: 3})}
			registry.Register(counting)

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() {
				defer ginkgo.GinkgoRecover()
				done <- newController().Run(runCtx, time.Minute, false)
			}()

			Eventually(counting.lists.Load).Should(BeEquivalentTo(1))
			Eventually(fakeClock.HasWaiters).Should(BeTrue())

			fakeClock.Step(30 * time.Second)
			Consistently(counting.lists.Load, 100*time.Millisecond).Should(BeEquivalentTo(1))

			fakeClock.Step(30 * time.Second)
			Eventually(counting.lists.Load).Should(BeEquivalentTo(2))

			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})
	})
})
