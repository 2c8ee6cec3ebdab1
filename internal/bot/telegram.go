package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"philliesbot/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handler processes one inbound message
type Handler interface {
	Handle(ctx context.Context, msg Message)
}

// TransportOptions tunes the update loop
type TransportOptions struct {
	MaxConcurrent  int
	HandlerTimeout time.Duration
	PollTimeout    int
	Debug          bool
}

// TelegramTransport long-polls the Bot API and sends replies
type TelegramTransport struct {
	api     *tgbotapi.BotAPI
	opts    TransportOptions
	limiter chan struct{}
	wg      sync.WaitGroup
}

// NewTelegramTransport authenticates with token
func NewTelegramTransport(token string, opts TransportOptions) (*TelegramTransport, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	api.Debug = opts.Debug

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 60 * time.Second
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 60
	}

	log.Info().
		Str("username", api.Self.UserName).
		Int("max_concurrent", opts.MaxConcurrent).
		Msg("Authorized telegram bot")

	return &TelegramTransport{
		api:     api,
		opts:    opts,
		limiter: make(chan struct{}, opts.MaxConcurrent),
	}, nil
}

// Send delivers a reply and returns the sent message's ID
func (t *TelegramTransport) Send(ctx context.Context, reply Reply) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(reply.ChatID, reply.Text)
	msg.ReplyToMessageID = reply.ReplyToID
	if reply.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if reply.ForceReply {
		msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true, Selective: true}
	}

	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to chat %d: %w", reply.ChatID, err)
	}
	return sent.MessageID, nil
}

// SendText sends plain text, used by the announcement sink
func (t *TelegramTransport) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := t.Send(ctx, Reply{ChatID: chatID, Text: text})
	return err
}

// Run receives updates until ctx is cancelled, handling each in its own
// goroutine. At most MaxConcurrent updates are in flight.
func (t *TelegramTransport) Run(ctx context.Context, handler Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.opts.PollTimeout
	updates := t.api.GetUpdatesChan(u)

	log.Info().Msg("Listening for updates")

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.wg.Wait()
			log.Info().Msg("Update loop stopped")
			return nil

		case update, ok := <-updates:
			if !ok {
				t.wg.Wait()
				return fmt.Errorf("update channel closed")
			}

			msg, ok := convertUpdate(update)
			if !ok {
				continue
			}

			select {
			case t.limiter <- struct{}{}:
			case <-ctx.Done():
				continue
			}

			t.wg.Add(1)
			go func() {
				defer t.wg.Done()
				defer func() { <-t.limiter }()
				t.dispatch(ctx, handler, msg)
			}()
		}
	}
}

func (t *TelegramTransport) dispatch(ctx context.Context, handler Handler, msg Message) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.HandlerTimeout)
	defer cancel()

	logger := log.With().
		Str("request_id", uuid.NewString()).
		Logger()
	ctx = logger.WithContext(ctx)

	start := time.Now()
	handler.Handle(ctx, msg)

	if ctx.Err() == context.DeadlineExceeded {
		metrics.RecordError("transport", "handler_timeout")
		logger.Warn().
			Int64("chat_id", msg.ChatID).
			Dur("duration", time.Since(start)).
			Msg("Handler exceeded timeout")
	}
}

// convertUpdate maps a Bot API update onto a Message; ok is false for
// updates that carry no text message.
func convertUpdate(update tgbotapi.Update) (Message, bool) {
	m := update.Message
	if m == nil || m.Chat == nil {
		return Message{}, false
	}

	msg := Message{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	if m.From != nil {
		msg.UserID = m.From.ID
	}
	if m.ReplyToMessage != nil {
		msg.ReplyToID = m.ReplyToMessage.MessageID
	}
	if m.IsCommand() {
		msg.Command = m.Command()
		msg.Args = m.CommandArguments()
	}
	return msg, true
}
