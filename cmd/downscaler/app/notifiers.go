/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package app

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/ardikabs/downscaler/internal/config"
	"github.com/ardikabs/downscaler/internal/notification"
)

// BuildNotifier returns the configured notifiers, or nil when none is set.
func BuildNotifier(log logr.Logger, cfg *config.Config) (notification.Notifier, error) {
	var notifiers notification.Multi

	if cfg.SlackWebhookURL != "" {
		notifiers = append(notifiers, notification.NewSlack(cfg.SlackWebhookURL, cfg.SlackChannel, log.WithName("slack")))
	}

	if cfg.TelegramToken != "" {
		t, err := notification.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("create telegram notifier: %w", err)
		}
		notifiers = append(notifiers, t)
	}

	switch len(notifiers) {
	case 0:
		return nil, nil
	case 1:
		return notifiers[0], nil
	default:
		return notifiers, nil
	}
}
