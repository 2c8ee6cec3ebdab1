package scheduler

import (
	"context"
	"fmt"
	"time"

	"philliesbot/internal/games"
	"philliesbot/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// GameFinder finds the team's game on a date
type GameFinder interface {
	FetchGame(ctx context.Context, team string, date time.Time) (*models.Game, error)
}

// Publisher sends an announcement to every configured destination
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// Sweeper drops expired pending prompts
type Sweeper interface {
	Sweep(now time.Time) int
}

// Config wires a Scheduler
type Config struct {
	Team     string
	Location *time.Location

	// AnnounceCron is a 5-field cron spec in Location; empty disables it
	AnnounceCron string
	Games        GameFinder
	Publisher    Publisher

	// SweepInterval of zero or a nil Sweeper disables sweeping
	SweepInterval time.Duration
	Sweeper       Sweeper
}

// Scheduler runs the daily game-day announcement and the pending-prompt sweep
type Scheduler struct {
	cfg      Config
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		cfg:      cfg,
		cron:     cron.New(cron.WithLocation(cfg.Location)),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Start schedules the jobs and returns
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if s.cfg.AnnounceCron != "" && s.cfg.Publisher != nil {
		if _, err := s.cron.AddFunc(s.cfg.AnnounceCron, func() {
			if err := s.Announce(ctx); err != nil {
				log.Error().Err(err).Msg("Game-day announcement failed")
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule announcement: %w", err)
		}

		s.cron.Start()
		log.Info().
			Str("schedule", s.cfg.AnnounceCron).
			Str("timezone", s.cfg.Location.String()).
			Msg("Game-day announcement scheduled")
	}

	if s.cfg.Sweeper != nil && s.cfg.SweepInterval > 0 {
		s.ticker = time.NewTicker(s.cfg.SweepInterval)
		log.Info().
			Dur("interval", s.cfg.SweepInterval).
			Msg("Pending prompt sweep started")
		go s.sweepLoop(ctx)
	}

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) sweepLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case now := <-s.ticker.C:
			if n := s.cfg.Sweeper.Sweep(now); n > 0 {
				log.Debug().Int("expired", n).Msg("Swept pending prompts")
			}
		}
	}
}

// Announce publishes today's game-day message. Off days publish nothing.
func (s *Scheduler) Announce(ctx context.Context) error {
	now := s.now().In(s.cfg.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)

	game, err := s.cfg.Games.FetchGame(ctx, s.cfg.Team, today)
	if err != nil {
		return fmt.Errorf("failed to fetch today's game: %w", err)
	}

	text, ok := Announcement(s.cfg.Team, game)
	if !ok {
		log.Info().
			Str("team", s.cfg.Team).
			Str("date", today.Format("2006-01-02")).
			Msg("Off day, nothing to announce")
		return nil
	}

	if err := s.cfg.Publisher.Publish(ctx, text); err != nil {
		return fmt.Errorf("failed to publish announcement: %w", err)
	}

	log.Info().
		Str("team", s.cfg.Team).
		Str("date", today.Format("2006-01-02")).
		Msg("Game-day announcement published")
	return nil
}

// Announcement renders the game-day message; ok is false on off days
func Announcement(team string, game *models.Game) (string, bool) {
	if game == nil {
		return "", false
	}

	zone := game.TimeZone
	if zone == "" {
		zone = "ET"
	}
	where := "@"
	if game.IsHome(team) {
		where = "vs"
	}

	text := fmt.Sprintf("Game day! %s %s %s at %s %s", team, where, game.Opponent(team), game.StartTime(), zone)
	if game.Venue != "" {
		text += " (" + game.Venue + ")"
	}
	if games.PitcherTier(game) != games.TierNone {
		text += "\n" + games.FormatPitchers(team, game)
	}
	return text, true
}
