/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package notification

import (
	"context"
	"fmt"
	"text/template"

	"github.com/go-telegram/bot"
)

// Telegram sends summaries to a chat through the Bot API.
type Telegram struct {
	bot    *bot.Bot
	chatID string
	tmpl   *template.Template
}

// NewTelegram creates a bot notifier. Extra bot options are passed through,
// e.g. bot.WithServerURL for a local Bot API server.
func NewTelegram(token, chatID string, opts ...bot.Option) (*Telegram, error) {
	b, err := bot.New(token, append([]bot.Option{bot.WithSkipGetMe()}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID, tmpl: defaultTemplate}, nil
}

// Notify sends the rendered summary. Empty summaries are skipped.
func (t *Telegram) Notify(ctx context.Context, summary Summary) error {
	if summary.Empty() {
		return nil
	}

	text, err := Render(t.tmpl, summary)
	if err != nil {
		return err
	}

	if _, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: t.chatID, Text: text}); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
