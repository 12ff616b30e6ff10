/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package policy

import "time"

// Resolver combines the global defaults with tag overrides.
type Resolver struct {
	Defaults Defaults
}

// NewResolver creates a resolver over the given defaults.
func NewResolver(defaults Defaults) *Resolver {
	return &Resolver{Defaults: defaults}
}

// Resolve returns the effective policy for a resource carrying tags, as seen at
// now. Malformed overrides are returned as warnings and fall back to the
// defaults.
//
// Precedence, highest first: exclude, exclude-until in the future, schedule
// overrides (replacing the default set entirely), downtime-scale.
func (r *Resolver) Resolve(tags map[string]string, now time.Time) (EffectivePolicy, []error) {
	o, warnings := ParseOverrides(tags)

	p := EffectivePolicy{
		Uptime:        r.Defaults.Uptime,
		Downtime:      r.Defaults.Downtime,
		DowntimeScale: r.Defaults.DowntimeScale,
		ExcludeUntil:  o.ExcludeUntil,
	}

	if o.Exclude != nil && *o.Exclude {
		p.Excluded = true
	}
	if o.ExcludeUntil != nil && now.Before(*o.ExcludeUntil) {
		p.Excluded = true
	}

	if o.Uptime != nil {
		p.Uptime = *o.Uptime
	}
	if o.Downtime != nil {
		p.Downtime = *o.Downtime
	}
	if o.DowntimeScale != nil {
		p.DowntimeScale = *o.DowntimeScale
	}

	return p, warnings
}
