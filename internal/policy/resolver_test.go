/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardikabs/downscaler/internal/scheduler"
)

// view flattens an EffectivePolicy into comparable values.
type view struct {
	Uptime        string
	Downtime      string
	Excluded      bool
	DowntimeScale int
}

func viewOf(p EffectivePolicy) view {
	return view{
		Uptime:        p.Uptime.String(),
		Downtime:      p.Downtime.String(),
		Excluded:      p.Excluded,
		DowntimeScale: p.DowntimeScale,
	}
}

func mustDefaults(t *testing.T, uptime, downtime string, scale int) Defaults {
	t.Helper()
	d, err := NewDefaults(uptime, downtime, scale)
	require.NoError(t, err)
	return d
}

func TestResolve(t *testing.T) {
	now := time.Date(2024, 4, 3, 12, 0, 0, 0, time.UTC)
	defaults := mustDefaults(t, "Mon-Fri 08:00-18:00 America/New_York", "", 0)

	tests := []struct {
		name         string
		tags         map[string]string
		want         view
		wantWarnings int
	}{
		{
			name: "no tags inherits defaults",
			tags: nil,
			want: view{Uptime: "Mon-Fri 08:00-18:00 America/New_York"},
		},
		{
			name: "foreign tags are ignored",
			tags: map[string]string{"Name": "web", "uptime": "Sat 10:00-11:00 UTC"},
			want: view{Uptime: "Mon-Fri 08:00-18:00 America/New_York"},
		},
		{
			name: "uptime tag replaces default set",
			tags: map[string]string{"downscaler:uptime": "Sat 10:00-14:00 UTC"},
			want: view{Uptime: "Sat 10:00-14:00 UTC"},
		},
		{
			name: "downtime tag adds downtime without touching uptime",
			tags: map[string]string{"downscaler:downtime": "Sun 00:00-00:00 UTC"},
			want: view{Uptime: "Mon-Fri 08:00-18:00 America/New_York", Downtime: "Sun 00:00-00:00 UTC"},
		},
		{
			name: "keys match case-insensitively",
			tags: map[string]string{"Downscaler:Downtime-Scale": "50"},
			want: view{Uptime: "Mon-Fri 08:00-18:00 America/New_York", DowntimeScale: 50},
		},
		{
			name: "exclude true",
			tags: map[string]string{"downscaler:exclude": "true"},
			want: view{Uptime: "Mon-Fri 08:00-18:00 America/New_York", Excluded: true},
		},
		{
			name: "exclude yes",
			tags: map[string]string{"downscaler:exclude": "Yes"},
			want: view{Uptime: "Mon-Fri 08:00-18:00 America/New_York", Excluded: true},
		},
		{
			name: "exclude false",
			tags: map[string]string{"downscaler:exclude": "false"},
			want: view{Uptime: "Mon-Fri 08:00-18:00 America/New_York"},
		},
		{
			name: "exclude-until in the future",
			tags: map[string]string{"downscaler:exclude-until": "2024-04-04T00:00:00Z"},
			want: view{Uptime: "Mon-Fri 08:00-18:00 America/New_York", Excluded: true},
		},
		{
			name: "exclude-until lapsed",
			tags: map[string]string{"downscaler:exclude-until": "2024-04-03T12:00:00Z"},
			want: view{Uptime: "Mon-Fri 08:00-18:00 America/New_York"},
		},
		{
			name:         "malformed uptime falls back to default",
			tags:         map[string]string{"downscaler:uptime": "Xyz 10:00-11:00 UTC"},
			want:         view{Uptime: "Mon-Fri 08:00-18:00 America/New_York"},
			wantWarnings: 1,
		},
		{
			name: "malformed override does not drop valid ones",
			tags: map[string]string{
				"downscaler:downtime":       "Sat-Sun 00:00-00:00 UTC",
				"downscaler:downtime-scale": "150",
				"downscaler:exclude":        "maybe",
				"downscaler:exclude-until":  "tomorrow",
			},
			want:         view{Uptime: "Mon-Fri 08:00-18:00 America/New_York", Downtime: "Sat-Sun 00:00-00:00 UTC"},
			wantWarnings: 3,
		},
	}

	r := NewResolver(defaults)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := r.Resolve(tt.tags, now)
			assert.Len(t, warnings, tt.wantWarnings)
			if diff := cmp.Diff(tt.want, viewOf(got)); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := NewResolver(mustDefaults(t, "Mon-Fri 08:00-18:00 UTC", "Sat 00:00-00:00 UTC", 20))
	tags := map[string]string{
		"downscaler:uptime":         "Mon-Thu 09:00-17:00 Europe/Berlin",
		"downscaler:downtime-scale": "30",
	}
	now := time.Date(2024, 4, 3, 12, 0, 0, 0, time.UTC)

	first, _ := r.Resolve(tags, now)
	for i := 0; i < 10; i++ {
		again, _ := r.Resolve(tags, now)
		assert.Equal(t, viewOf(first), viewOf(again))
	}
}

func TestResolve_WarningTypes(t *testing.T) {
	r := NewResolver(Defaults{})
	_, warnings := r.Resolve(map[string]string{
		"downscaler:uptime":         "Mon-Fri 25:00-26:00 UTC",
		"downscaler:downtime-scale": "-1",
	}, time.Now())
	require.Len(t, warnings, 2)

	var perr *scheduler.ParseError
	assert.True(t, errors.As(warnings[0], &perr))

	var verr *ValidationError
	require.True(t, errors.As(warnings[1], &verr))
	assert.Equal(t, "downscaler:downtime-scale", verr.Key)
}

func TestParseOverrides(t *testing.T) {
	o, errs := ParseOverrides(map[string]string{
		"downscaler:exclude":        "off",
		"downscaler:exclude-until":  "2024-12-24T00:00:00+01:00",
		"downscaler:downtime-scale": " 25 ",
	})
	require.Empty(t, errs)
	assert.Nil(t, o.Uptime)
	assert.Nil(t, o.Downtime)
	require.NotNil(t, o.Exclude)
	assert.False(t, *o.Exclude)
	require.NotNil(t, o.ExcludeUntil)
	assert.True(t, o.ExcludeUntil.Equal(time.Date(2024, 12, 23, 23, 0, 0, 0, time.UTC)))
	require.NotNil(t, o.DowntimeScale)
	assert.Equal(t, 25, *o.DowntimeScale)
}

func TestNewDefaults(t *testing.T) {
	_, err := NewDefaults("Mon-Fri 08:00-18:00 UTC", "", 0)
	assert.NoError(t, err)

	_, err = NewDefaults("Mon-Fri 08:00", "", 0)
	var perr *scheduler.ParseError
	assert.True(t, errors.As(err, &perr))

	_, err = NewDefaults("", "2024-04-01T08:00:00", 0)
	assert.True(t, errors.As(err, &perr))

	_, err = NewDefaults("", "", 101)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
