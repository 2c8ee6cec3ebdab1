// Package cache holds short-lived bot state: the /stats prompts still
// waiting for a reply.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Key identifies a prompt by chat and the prompt's own message ID
type Key struct {
	ChatID    int64
	MessageID int
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d", k.ChatID, k.MessageID)
}

// PendingRequest is a /stats prompt awaiting the player name
type PendingRequest struct {
	ChatID    int64     `json:"chat_id"`
	MessageID int       `json:"message_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingStore keeps pending requests until they are taken or expire
type PendingStore interface {
	Put(ctx context.Context, key Key, req PendingRequest, ttl time.Duration) error
	// Take removes and returns the request; nil, nil when missing or expired
	Take(ctx context.Context, key Key) (*PendingRequest, error)
}
