// Package players resolves a partial player name against the local player
// table and finds that player's most recent published batting line.
package players

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"philliesbot/internal/client"
	"philliesbot/internal/metrics"
	"philliesbot/internal/models"

	"github.com/rs/zerolog/log"
)

// Kind is the outcome of a player lookup
type Kind int

const (
	NoMatch Kind = iota
	UniqueMatch
	MultipleMatches
	NoRecentStats
)

func (k Kind) String() string {
	switch k {
	case UniqueMatch:
		return "unique_match"
	case MultipleMatches:
		return "multiple_matches"
	case NoRecentStats:
		return "no_recent_stats"
	default:
		return "no_match"
	}
}

// Finder searches the player table
type Finder interface {
	SearchByName(ctx context.Context, query string) ([]models.Player, error)
}

// StatsSource fetches one player's batting document for one day
type StatsSource interface {
	FetchBatterStats(ctx context.Context, date time.Time, playerID string) (*models.BatterStats, error)
}

// Result is what Resolve found
type Result struct {
	Kind  Kind
	Query string

	// Player is set for UniqueMatch and NoRecentStats
	Player *models.Player
	// Candidates is set for MultipleMatches
	Candidates []models.Player

	Stats *models.BatterStats
	Date  time.Time
	// Days is the number of days the walk examined
	Days int
}

// Resolver looks players up and walks back through their daily documents
type Resolver struct {
	finder   Finder
	stats    StatsSource
	lookback int
}

// NewResolver creates a resolver that looks back at most lookback days
func NewResolver(finder Finder, stats StatsSource, lookback int) *Resolver {
	if lookback < 1 {
		lookback = 1
	}
	return &Resolver{finder: finder, stats: stats, lookback: lookback}
}

// Lookback returns the size of the walk window in days
func (r *Resolver) Lookback() int {
	return r.lookback
}

// Resolve matches query against the player table. A unique match is followed
// by a walk from the day before today back through the lookback window; the
// first day with a published document wins.
func (r *Resolver) Resolve(ctx context.Context, query string, today time.Time) (Result, error) {
	query = strings.TrimSpace(query)
	res := Result{Kind: NoMatch, Query: query}
	if query == "" {
		return res, nil
	}

	matches, err := r.finder.SearchByName(ctx, query)
	if err != nil {
		return res, fmt.Errorf("failed to search players: %w", err)
	}

	switch len(matches) {
	case 0:
		return res, nil
	case 1:
	default:
		res.Kind = MultipleMatches
		res.Candidates = matches
		return res, nil
	}

	player := matches[0]
	res.Player = &player

	date := today.AddDate(0, 0, -1)
	for day := 1; day <= r.lookback; day++ {
		res.Days = day

		stats, err := r.stats.FetchBatterStats(ctx, date, player.PlayerID)
		if err == nil && stats != nil {
			metrics.RecordStatsWalk(day)
			res.Kind = UniqueMatch
			res.Stats = stats
			res.Date = date
			return res, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		if err != nil && !errors.Is(err, client.ErrNotFound) {
			log.Debug().
				Err(err).
				Str("player_id", player.PlayerID).
				Str("date", date.Format("2006-01-02")).
				Msg("Batter document fetch failed, trying previous day")
		}

		date = date.AddDate(0, 0, -1)
	}

	metrics.RecordStatsWalk(r.lookback)
	log.Info().
		Str("player_id", player.PlayerID).
		Int("days", r.lookback).
		Msg("No recent stats within lookback window")

	res.Kind = NoRecentStats
	return res, nil
}
