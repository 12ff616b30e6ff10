/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package preview

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardikabs/downscaler/cmd/downscaler/common"
	"github.com/ardikabs/downscaler/cmd/downscaler/printers"
	"github.com/ardikabs/downscaler/internal/policy"
	"github.com/ardikabs/downscaler/internal/resource"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(&common.RootOptions{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPreview_JSON(t *testing.T) {
	out, err := execute(t,
		"--default-uptime", "Mon-Fri 08:00-18:00 UTC",
		"--at", "2024-04-06T12:00:00Z",
		"--capacity", "4",
		"--tag", "downscaler:downtime-scale=50",
		"--json",
	)
	require.NoError(t, err)

	var got printers.PreviewOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	want := printers.PreviewOutput{
		Time: time.Date(2024, 4, 6, 12, 0, 0, 0, time.UTC),
		Policy: printers.PolicyOutput{
			Uptime:        "Mon-Fri 08:00-18:00 UTC",
			DowntimeScale: 50,
		},
		Result: printers.ResultOutput{State: "DOWN", Reason: "OUTSIDE_UPTIME", ScalePercent: 50},
		Action: printers.ActionOutput{Kind: "ScaleTo", Capacity: 2, Description: "scale to 2, record original capacity 4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("preview mismatch (-want +got):\n%s", diff)
	}
}

func TestPreview_Human(t *testing.T) {
	out, err := execute(t,
		"--default-uptime", "Mon-Fri 08:00-18:00 UTC",
		"--at", "2024-04-08T10:00:00Z",
		"--tag", "downscaler:exclude=maybe",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Mon-Fri 08:00-18:00 UTC")
	assert.Contains(t, out, "DEFAULT_UP")
	assert.Contains(t, out, "no change")
	assert.Contains(t, out, "downscaler:exclude")
}

func TestPreview_InvalidInput(t *testing.T) {
	_, err := execute(t, "--at", "tomorrow")
	assert.ErrorContains(t, err, "invalid --at")

	_, err = execute(t, "--default-uptime", "Mon-Fri 25:00-18:00")
	assert.ErrorContains(t, err, "invalid default schedule")
}

func TestEvaluate_RestoreAmbiguous(t *testing.T) {
	defaults, err := policy.NewDefaults("Mon-Fri 08:00-18:00 UTC", "", 0)
	require.NoError(t, err)

	at := time.Date(2024, 4, 8, 10, 0, 0, 0, time.UTC)
	out := Evaluate(defaults, 0, resource.Descriptor{ID: "x", Capacity: 0}, at)

	assert.Equal(t, "UP", out.Result.State)
	assert.Equal(t, "NoOp", out.Action.Kind)
	assert.Contains(t, out.Action.Warning, "no recorded original capacity")
}

func TestEvaluate_GracePeriod(t *testing.T) {
	defaults, err := policy.NewDefaults("", "Sat-Sun 00:00-23:59 UTC", 0)
	require.NoError(t, err)

	at := time.Date(2024, 4, 6, 12, 0, 0, 0, time.UTC)
	d := resource.Descriptor{ID: "x", Capacity: 2, CreatedAt: at.Add(-5 * time.Minute)}

	out := Evaluate(defaults, 15*time.Minute, d, at)
	assert.Equal(t, "GRACE_PERIOD", out.Result.Reason)

	out = Evaluate(defaults, time.Minute, d, at)
	assert.Equal(t, "DOWNTIME_MATCH", out.Result.Reason)
	assert.Equal(t, "scale to 0, record original capacity 2", out.Action.Description)
}
