/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package notification delivers per-cycle summaries of the capacity changes
// made by the downscaler to chat channels.
package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// Summary describes what one evaluation cycle changed.
type Summary struct {
	CycleID  string
	Time     time.Time
	DryRun   bool
	Actions  []ActionRecord
	Failures []FailureRecord
}

// ActionRecord is one mutating action.
type ActionRecord struct {
	Resource string
	Action   string
	Reason   string
}

// FailureRecord is one resource or provider failure.
type FailureRecord struct {
	Resource       string
	Classification string
	Error          string
}

// Empty reports whether there is nothing worth sending.
func (s Summary) Empty() bool {
	return len(s.Actions) == 0 && len(s.Failures) == 0
}

// Notifier sends a cycle summary somewhere.
type Notifier interface {
	Notify(ctx context.Context, s Summary) error
}

// Multi fans a summary out to several notifiers.
type Multi []Notifier

// Notify calls every notifier and joins their errors.
func (m Multi) Notify(ctx context.Context, s Summary) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DefaultTemplate renders a summary as plain text.
const DefaultTemplate = `{{ if .DryRun }}[dry-run] {{ end }}downscaler cycle {{ .CycleID }} at {{ dateInZone "2006-01-02 15:04 MST" .Time "UTC" }}
{{- range .Actions }}
• {{ .Resource }}: {{ .Action }} ({{ .Reason }})
{{- end }}
{{- range .Failures }}
✗ {{ .Resource }}: {{ .Error | trunc 200 }} [{{ .Classification | lower }}]
{{- end }}
`

// ParseTemplate parses a message template with the sprig function map.
func ParseTemplate(text string) (*template.Template, error) {
	tmpl, err := template.New("summary").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse notification template: %w", err)
	}
	return tmpl, nil
}

// Render executes tmpl against s.
func Render(tmpl *template.Template, s Summary) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render notification: %w", err)
	}
	return buf.String(), nil
}

var defaultTemplate = template.Must(ParseTemplate(DefaultTemplate))
