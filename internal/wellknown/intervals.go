/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package wellknown

import "time"

const (
	// DefaultInterval is the time between two evaluation cycles.
	DefaultInterval = 60 * time.Second

	// DefaultGracePeriod protects freshly created resources from being scaled down.
	// Zero disables the guard.
	DefaultGracePeriod = 0

	// ShutdownTimeout bounds the metrics server shutdown on exit.
	ShutdownTimeout = 5 * time.Second
)
