/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrCycleFailed is returned by Run in once mode when any resource or
// provider failed during the cycle.
var ErrCycleFailed = errors.New("evaluation cycle finished with failures")

// Run evaluates immediately and then on every interval until ctx is done.
// With once set it runs a single cycle and returns.
//
// Cycles never overlap: the next tick is computed after the previous cycle
// finished, so a slow cycle delays the schedule rather than stacking up.
func (c *Controller) Run(ctx context.Context, interval time.Duration, once bool) error {
	if once {
		report, err := c.RunCycle(ctx)
		if err != nil {
			return err
		}
		if report.Failed() {
			return ErrCycleFailed
		}
		return nil
	}

	if interval <= 0 {
		return fmt.Errorf("invalid interval %s", interval)
	}
	schedule := cron.Every(interval)
	c.log.Info("starting controller loop", "interval", schedule.Delay)

	for {
		if _, err := c.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}

		now := c.clock.Now()
		next := schedule.Next(now)
		c.log.V(1).Info("waiting for next cycle", "next", next)

		timer := c.clock.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			c.log.Info("stopping controller loop")
			return nil
		case <-timer.C():
		}
	}

	c.log.Info("stopping controller loop")
	return nil
}
