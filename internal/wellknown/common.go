/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package wellknown

const (
	// DefaultUptime is the default uptime schedule. "always" windows are modelled as
	// an empty schedule, so the default imposes no uptime restriction.
	DefaultUptime = ""

	// DefaultDowntime is the default downtime schedule.
	DefaultDowntime = ""

	// DefaultDowntimeScale is the percentage of the original capacity kept during downtime.
	DefaultDowntimeScale = 0

	// DefaultConcurrency is the number of providers processed in parallel.
	DefaultConcurrency = 4

	// DefaultMetricsAddr is the listen address of the metrics endpoint.
	DefaultMetricsAddr = ":8080"

	// EnvPrefix is the prefix of environment variables read by the configuration layer.
	EnvPrefix = "DOWNSCALER_"

	// ManagedByASGTag marks EC2 instances owned by an Auto Scaling group.
	ManagedByASGTag = "aws:autoscaling:groupName"

	// ManagedByKarpenterTag marks EC2 instances provisioned by Karpenter.
	ManagedByKarpenterTag = "karpenter.sh/nodepool"
)
