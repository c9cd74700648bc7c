// Copyright (c) 2026 BVK Chaitanya

package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
)

type Client struct {
	mu sync.Mutex

	bot *bot.Bot

	secrets *Secrets
}

func New(ctx context.Context, secrets *Secrets) (*Client, error) {
	if err := secrets.Check(); err != nil {
		return nil, err
	}
	b, err := bot.New(secrets.BotToken)
	if err != nil {
		return nil, err
	}
	c := &Client{
		bot:     b,
		secrets: secrets.Clone(),
	}
	return c, nil
}

// FormatMessage prefixes the message text with its timestamp.
func FormatMessage(at time.Time, text string) string {
	return at.Format("2006-01-02 15:04:05 MST") + " " + text
}

// SendMessage sends the message to all configured chats. Failures for
// individual chats are logged and ignored.
func (c *Client) SendMessage(ctx context.Context, at time.Time, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := FormatMessage(at, text)
	slog.Info("sending notification", "at", at, "message", text)

	for _, cid := range c.secrets.ChatIDs {
		m := &bot.SendMessageParams{
			ChatID: cid,
			Text:   msg,
		}
		if _, err := c.bot.SendMessage(ctx, m); err != nil {
			slog.Error("could not notify chat (ignored)", "chat", cid, "err", err)
			continue
		}
	}
	return nil
}
