// Package games looks up a team's games in the gameday scoreboard feed and
// renders them as chat replies.
package games

import (
	"context"
	"errors"
	"time"

	"philliesbot/internal/client"
	"philliesbot/internal/metrics"
	"philliesbot/internal/models"

	"github.com/rs/zerolog/log"
)

// ScoreboardSource fetches one day's scoreboard
type ScoreboardSource interface {
	FetchScoreboard(ctx context.Context, date time.Time) (*models.Scoreboard, error)
}

// Fetcher finds a team's games in the daily scoreboard
type Fetcher struct {
	source ScoreboardSource
}

// NewFetcher creates a Fetcher over source
func NewFetcher(source ScoreboardSource) *Fetcher {
	return &Fetcher{source: source}
}

// FetchGame returns team's first game on date, or nil when the team is off
// or the feed has nothing for that day. Only context errors are returned.
func (f *Fetcher) FetchGame(ctx context.Context, team string, date time.Time) (*models.Game, error) {
	games, err := f.FetchGames(ctx, team, date)
	if err != nil || len(games) == 0 {
		return nil, err
	}
	return &games[0], nil
}

// FetchGames returns every game team plays on date (doubleheaders included)
func (f *Fetcher) FetchGames(ctx context.Context, team string, date time.Time) ([]models.Game, error) {
	sb, err := f.source.FetchScoreboard(ctx, date)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		errType := "transport"
		if errors.Is(err, client.ErrNotFound) {
			errType = "no_feed"
		}
		metrics.RecordError("fetcher", errType)
		log.Debug().
			Err(err).
			Str("team", team).
			Str("date", date.Format("2006-01-02")).
			Msg("No scoreboard for date, treating as no game")
		return nil, nil
	}

	var matched []models.Game
	for _, game := range sb.Games() {
		if game.Involves(team) {
			matched = append(matched, game)
		}
	}
	return matched, nil
}
