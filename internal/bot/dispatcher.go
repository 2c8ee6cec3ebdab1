// Package bot routes chat commands to the game and player lookups and sends
// the replies back through the chat transport.
package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"philliesbot/internal/cache"
	"philliesbot/internal/games"
	"philliesbot/internal/metrics"
	"philliesbot/internal/models"
	"philliesbot/internal/players"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fixed reply texts
const (
	StatsPrompt   = "Which player would you like stats for?"
	ApologyText   = "Sorry, something went wrong. Try again in a bit."
	suckText      = "The %s suck and are a bunch of bums"
	howardText    = "The guy we pay to strikeout 4 times a game?"
	startText     = "Hi! I am %sBot. Beep boop bleep."
	helpTextIntro = "I am %sBot. Here is what I can do:\n"
)

// sendTimeout bounds the final reply, which outlives the handler's deadline
const sendTimeout = 10 * time.Second

var helpCommands = []struct{ name, desc string }{
	{"score", "today's score or start time"},
	{"status", "inning, outs, batter and runners"},
	{"pitchers", "today's pitching matchup"},
	{"record", "the current win-loss record"},
	{"schedule", "games over the next week"},
	{"stats", "a player's batting line, e.g. `/stats Harper`"},
}

// Message is an inbound chat message
type Message struct {
	ChatID    int64
	MessageID int
	UserID    int64
	Text      string
	// Command is set without the leading slash for commands
	Command string
	Args    string
	// ReplyToID is the message this one replies to, 0 if none
	ReplyToID int
}

// IsCommand reports whether the message is a bot command
func (m Message) IsCommand() bool {
	return m.Command != ""
}

// Reply is an outbound message
type Reply struct {
	ChatID     int64
	Text       string
	ReplyToID  int
	Markdown   bool
	ForceReply bool
}

// Sender delivers replies and returns the ID of the sent message
type Sender interface {
	Send(ctx context.Context, reply Reply) (int, error)
}

// GameFinder finds the team's game on a date
type GameFinder interface {
	FetchGame(ctx context.Context, team string, date time.Time) (*models.Game, error)
}

// RecordFinder resolves and renders the team's record
type RecordFinder interface {
	Resolve(ctx context.Context, team string, today time.Time) (games.RecordResult, error)
	Format(team string, res games.RecordResult) string
}

// ScheduleFinder lists and renders upcoming games
type ScheduleFinder interface {
	Upcoming(ctx context.Context, team string, today time.Time) ([]games.ScheduleEntry, error)
	Format(team string, entries []games.ScheduleEntry) string
}

// PlayerFinder resolves and renders player stats
type PlayerFinder interface {
	Resolve(ctx context.Context, query string, today time.Time) (players.Result, error)
	Format(res players.Result) string
}

// Config wires a Dispatcher
type Config struct {
	Team       string
	Location   *time.Location
	PendingTTL time.Duration

	Games    GameFinder
	Record   RecordFinder
	Schedule ScheduleFinder
	Players  PlayerFinder
	Pending  cache.PendingStore
	Sender   Sender

	// Now defaults to time.Now
	Now func() time.Time
}

// Dispatcher maps commands to handlers
type Dispatcher struct {
	cfg      Config
	handlers map[string]handlerFunc
}

// handlerFunc returns the reply to send, or nil when there is nothing more to send
type handlerFunc func(ctx context.Context, msg Message) (*Reply, error)

// NewDispatcher creates a dispatcher with the standard command set
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 5 * time.Minute
	}

	d := &Dispatcher{cfg: cfg}
	d.handlers = map[string]handlerFunc{
		"start":    d.handleStart,
		"help":     d.handleHelp,
		"score":    d.handleScore,
		"status":   d.handleStatus,
		"pitchers": d.handlePitchers,
		"record":   d.handleRecord,
		"schedule": d.handleSchedule,
		"stats":    d.handleStats,
		"suck":     d.handleSuck,
		"howard":   d.handleHoward,
	}
	return d
}

// today is the calendar date at the team's home time zone
func (d *Dispatcher) today() time.Time {
	now := d.cfg.Now().In(d.cfg.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, d.cfg.Location)
}

func loggerFrom(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}

// Handle processes one inbound message. Every handled command gets exactly
// one reply; failures and panics become the generic apology.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) {
	logger := loggerFrom(ctx).With().
		Int64("chat_id", msg.ChatID).
		Int("message_id", msg.MessageID).
		Str("command", msg.Command).
		Logger()

	handler, name := d.route(msg)
	if handler == nil {
		logger.Debug().Msg("Ignoring message with no handler")
		return
	}

	start := time.Now()
	reply, err := d.invoke(ctx, handler, msg)
	if reply == nil && err == nil {
		metrics.RecordCommand(name, "no_reply")
		logger.Debug().Msg("Handler sent no reply")
		return
	}

	if err != nil {
		metrics.RecordCommand(name, "error")
		metrics.RecordError("dispatcher", name)
		logger.Error().Err(err).Msg("Command failed")
		reply = &Reply{ChatID: msg.ChatID, Text: ApologyText, ReplyToID: msg.MessageID}
	}

	// The handler may have failed because ctx expired; the reply must still go out
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()
	if _, sendErr := d.cfg.Sender.Send(sendCtx, *reply); sendErr != nil {
		metrics.RecordError("dispatcher", "send")
		logger.Error().Err(sendErr).Msg("Failed to send reply")
		return
	}

	if err == nil {
		metrics.RecordCommand(name, "success")
	}
	logger.Debug().
		Dur("duration", time.Since(start)).
		Msg("Command handled")
}

// route picks the handler: commands by name, plain replies by pending prompt
func (d *Dispatcher) route(msg Message) (handlerFunc, string) {
	if msg.IsCommand() {
		h, ok := d.handlers[strings.ToLower(msg.Command)]
		if !ok {
			return nil, ""
		}
		return h, strings.ToLower(msg.Command)
	}
	if msg.ReplyToID != 0 && d.cfg.Pending != nil {
		return d.handleStatsReply, "stats_reply"
	}
	return nil, ""
}

func (d *Dispatcher) invoke(ctx context.Context, h handlerFunc, msg Message) (reply *Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in handler: %v", r)
			loggerFrom(ctx).Error().
				Str("stack", string(debug.Stack())).
				Msg("Recovered handler panic")
		}
	}()
	return h(ctx, msg)
}

func textReply(msg Message, text string) *Reply {
	return &Reply{ChatID: msg.ChatID, Text: text}
}

func (d *Dispatcher) handleStart(ctx context.Context, msg Message) (*Reply, error) {
	return textReply(msg, fmt.Sprintf(startText, d.cfg.Team)), nil
}

func (d *Dispatcher) handleHelp(ctx context.Context, msg Message) (*Reply, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, helpTextIntro, d.cfg.Team)
	for _, c := range helpCommands {
		fmt.Fprintf(&sb, "/%s - %s\n", c.name, c.desc)
	}
	sb.WriteString("Beep boop bleep.")

	reply := textReply(msg, sb.String())
	reply.Markdown = true
	return reply, nil
}

func (d *Dispatcher) handleSuck(ctx context.Context, msg Message) (*Reply, error) {
	return textReply(msg, fmt.Sprintf(suckText, d.cfg.Team)), nil
}

func (d *Dispatcher) handleHoward(ctx context.Context, msg Message) (*Reply, error) {
	return textReply(msg, howardText), nil
}

func (d *Dispatcher) handleScore(ctx context.Context, msg Message) (*Reply, error) {
	game, err := d.cfg.Games.FetchGame(ctx, d.cfg.Team, d.today())
	if err != nil {
		return nil, err
	}
	return textReply(msg, games.FormatScore(d.cfg.Team, game)), nil
}

func (d *Dispatcher) handleStatus(ctx context.Context, msg Message) (*Reply, error) {
	game, err := d.cfg.Games.FetchGame(ctx, d.cfg.Team, d.today())
	if err != nil {
		return nil, err
	}
	return textReply(msg, games.FormatStatus(d.cfg.Team, game)), nil
}

func (d *Dispatcher) handlePitchers(ctx context.Context, msg Message) (*Reply, error) {
	game, err := d.cfg.Games.FetchGame(ctx, d.cfg.Team, d.today())
	if err != nil {
		return nil, err
	}
	return textReply(msg, games.FormatPitchers(d.cfg.Team, game)), nil
}

func (d *Dispatcher) handleRecord(ctx context.Context, msg Message) (*Reply, error) {
	res, err := d.cfg.Record.Resolve(ctx, d.cfg.Team, d.today())
	if err != nil {
		return nil, err
	}
	return textReply(msg, d.cfg.Record.Format(d.cfg.Team, res)), nil
}

func (d *Dispatcher) handleSchedule(ctx context.Context, msg Message) (*Reply, error) {
	entries, err := d.cfg.Schedule.Upcoming(ctx, d.cfg.Team, d.today())
	if err != nil {
		return nil, err
	}
	return textReply(msg, d.cfg.Schedule.Format(d.cfg.Team, entries)), nil
}

// handleStats answers "/stats Harper" directly. A bare "/stats" sends the
// prompt itself and records it so the user's reply can be matched later.
func (d *Dispatcher) handleStats(ctx context.Context, msg Message) (*Reply, error) {
	if query := strings.TrimSpace(msg.Args); query != "" {
		return d.statsReply(ctx, msg, query)
	}
	if d.cfg.Pending == nil {
		return textReply(msg, "Send /stats followed by a player name, e.g. /stats Harper"), nil
	}

	promptID, err := d.cfg.Sender.Send(ctx, Reply{
		ChatID:     msg.ChatID,
		Text:       StatsPrompt,
		ReplyToID:  msg.MessageID,
		ForceReply: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send stats prompt: %w", err)
	}

	key := cache.Key{ChatID: msg.ChatID, MessageID: promptID}
	req := cache.PendingRequest{
		ChatID:    msg.ChatID,
		MessageID: promptID,
		UserID:    msg.UserID,
		CreatedAt: d.cfg.Now(),
	}
	if err := d.cfg.Pending.Put(ctx, key, req, d.cfg.PendingTTL); err != nil {
		// The prompt already went out, so no apology on top of it
		metrics.RecordError("dispatcher", "pending_put")
		loggerFrom(ctx).Error().Err(err).
			Int64("chat_id", msg.ChatID).
			Int("prompt_id", promptID).
			Msg("Failed to store stats prompt")
		return nil, nil
	}

	// The prompt is the reply
	return nil, nil
}

// handleStatsReply treats a reply to a live stats prompt as the player query
func (d *Dispatcher) handleStatsReply(ctx context.Context, msg Message) (*Reply, error) {
	key := cache.Key{ChatID: msg.ChatID, MessageID: msg.ReplyToID}
	req, err := d.cfg.Pending.Take(ctx, key)
	if err != nil {
		return nil, err
	}
	if req == nil {
		// Expired or unknown prompt
		return nil, nil
	}
	if req.UserID != 0 && req.UserID != msg.UserID {
		// Someone else answered; keep the prompt for the user who asked
		if ttl := d.cfg.PendingTTL - d.cfg.Now().Sub(req.CreatedAt); ttl > 0 {
			if err := d.cfg.Pending.Put(ctx, key, *req, ttl); err != nil {
				metrics.RecordError("dispatcher", "pending_put")
				loggerFrom(ctx).Error().Err(err).Str("key", key.String()).Msg("Failed to restore stats prompt")
			}
		}
		return nil, nil
	}
	return d.statsReply(ctx, msg, msg.Text)
}

func (d *Dispatcher) statsReply(ctx context.Context, msg Message, query string) (*Reply, error) {
	res, err := d.cfg.Players.Resolve(ctx, query, d.today())
	if err != nil {
		return nil, err
	}

	loggerFrom(ctx).Info().
		Str("query", res.Query).
		Str("result", res.Kind.String()).
		Int("days", res.Days).
		Msg("Player lookup")

	return textReply(msg, d.cfg.Players.Format(res)), nil
}
