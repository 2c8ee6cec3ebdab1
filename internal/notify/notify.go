// Package notify publishes the daily game-day announcement.
package notify

import (
	"context"
	"errors"
	"fmt"

	"philliesbot/internal/metrics"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Sink is an announcement destination
type Sink interface {
	Name() string
	Publish(ctx context.Context, text string) error
}

// ChatSender sends plain text to a chat
type ChatSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// TelegramSink posts announcements to a fixed set of chats
type TelegramSink struct {
	sender  ChatSender
	chatIDs []int64
}

// NewTelegramSink creates a sink posting to chatIDs
func NewTelegramSink(sender ChatSender, chatIDs []int64) *TelegramSink {
	return &TelegramSink{sender: sender, chatIDs: chatIDs}
}

func (s *TelegramSink) Name() string { return "telegram" }

// Publish sends text to every chat and reports every failure
func (s *TelegramSink) Publish(ctx context.Context, text string) error {
	var errs []error
	for _, id := range s.chatIDs {
		if err := s.sender.SendText(ctx, id, text); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// SlackSink posts announcements to an incoming webhook
type SlackSink struct {
	webhookURL string
}

// NewSlackSink creates a sink for webhookURL
func NewSlackSink(webhookURL string) *SlackSink {
	return &SlackSink{webhookURL: webhookURL}
}

func (s *SlackSink) Name() string { return "slack" }

// Publish posts text to the webhook
func (s *SlackSink) Publish(ctx context.Context, text string) error {
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return fmt.Errorf("failed to post slack webhook: %w", err)
	}
	return nil
}

// Fanout publishes to several sinks
type Fanout struct {
	sinks []Sink
}

// NewFanout creates a Fanout; nil sinks are skipped
func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Len returns the number of sinks
func (f *Fanout) Len() int {
	return len(f.sinks)
}

// Publish sends text to every sink. One sink failing does not stop the rest.
func (f *Fanout) Publish(ctx context.Context, text string) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, text); err != nil {
			metrics.RecordAnnouncement(s.Name(), "error")
			log.Error().
				Err(err).
				Str("sink", s.Name()).
				Msg("Announcement failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		metrics.RecordAnnouncement(s.Name(), "success")
	}
	return errors.Join(errs...)
}
