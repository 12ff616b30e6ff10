/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package notification

import (
	"context"
	"fmt"
	"net/http"
	"text/template"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/slack-go/slack"
)

// Slack posts summaries to an incoming webhook.
type Slack struct {
	webhookURL string
	channel    string
	client     *http.Client
	tmpl       *template.Template
}

// SlackOption customizes a Slack notifier.
type SlackOption func(*Slack)

// WithSlackTemplate overrides the message template.
func WithSlackTemplate(tmpl *template.Template) SlackOption {
	return func(s *Slack) { s.tmpl = tmpl }
}

// WithSlackHTTPClient overrides the HTTP client.
func WithSlackHTTPClient(c *http.Client) SlackOption {
	return func(s *Slack) { s.client = c }
}

// NewSlack creates a webhook notifier. Requests are retried on 5xx and
// connection errors.
func NewSlack(webhookURL, channel string, log logr.Logger, opts ...SlackOption) *Slack {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = leveledLogger{log: log.WithName("slack")}

	s := &Slack{
		webhookURL: webhookURL,
		channel:    channel,
		client:     rc.StandardClient(),
		tmpl:       defaultTemplate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify posts the rendered summary. Empty summaries are skipped.
func (s *Slack) Notify(ctx context.Context, summary Summary) error {
	if summary.Empty() {
		return nil
	}

	text, err := Render(s.tmpl, summary)
	if err != nil {
		return err
	}

	msg := &slack.WebhookMessage{Channel: s.channel, Text: text}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.client, msg); err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}

// leveledLogger adapts logr to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log logr.Logger
}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error(nil, msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.V(1).Info(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(2).Info(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}
