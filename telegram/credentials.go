// Copyright (c) 2026 BVK Chaitanya

package telegram

import (
	"fmt"
	"slices"
)

type Secrets struct {
	BotToken string `json:"token" toml:"token"`

	// ChatIDs are the chats that receive the notifications.
	ChatIDs []int64 `json:"chat_ids" toml:"chat_ids"`
}

func (v *Secrets) Check() error {
	if len(v.BotToken) == 0 {
		return fmt.Errorf("bot token cannot be empty")
	}
	if len(v.ChatIDs) == 0 {
		return fmt.Errorf("at least one chat id is required")
	}
	if slices.Contains(v.ChatIDs, 0) {
		return fmt.Errorf("zero is not a valid chat id")
	}
	return nil
}

func (v *Secrets) Clone() *Secrets {
	return &Secrets{
		BotToken: v.BotToken,
		ChatIDs:  slices.Clone(v.ChatIDs),
	}
}
