package games

import (
	"context"
	"fmt"
	"time"

	"philliesbot/internal/models"

	"github.com/rs/zerolog/log"
)

// Direction is the way the record search walks the calendar
type Direction int

const (
	Backward Direction = iota
	Forward
)

// ParseDirection maps "forward"/"backward" to a Direction
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "backward", "":
		return Backward, nil
	case "forward":
		return Forward, nil
	}
	return Backward, fmt.Errorf("unknown search direction %q", s)
}

func (d Direction) step() int {
	if d == Forward {
		return 1
	}
	return -1
}

// GameFinder is the subset of Fetcher the resolvers need
type GameFinder interface {
	FetchGame(ctx context.Context, team string, date time.Time) (*models.Game, error)
	FetchGames(ctx context.Context, team string, date time.Time) ([]models.Game, error)
}

// RecordResult is the outcome of a record search
type RecordResult struct {
	Found  bool
	Wins   string
	Losses string
	Date   time.Time
	// Days is the number of days examined
	Days int
}

// RecordResolver finds the team's win-loss tally from the nearest game
// within a bounded window.
type RecordResolver struct {
	games     GameFinder
	maxDays   int
	direction Direction
}

// NewRecordResolver creates a resolver that examines at most maxDays days
func NewRecordResolver(games GameFinder, maxDays int, direction Direction) *RecordResolver {
	if maxDays < 1 {
		maxDays = 1
	}
	return &RecordResolver{games: games, maxDays: maxDays, direction: direction}
}

// Resolve walks from today one day at a time until a game with a record
// turns up or the window runs out.
func (r *RecordResolver) Resolve(ctx context.Context, team string, today time.Time) (RecordResult, error) {
	date := today
	for day := 1; day <= r.maxDays; day++ {
		game, err := r.games.FetchGame(ctx, team, date)
		if err != nil {
			return RecordResult{Days: day}, err
		}

		if game != nil {
			if wins, losses, ok := game.Record(team); ok {
				return RecordResult{Found: true, Wins: wins, Losses: losses, Date: date, Days: day}, nil
			}
		}

		date = date.AddDate(0, 0, r.direction.step())
	}

	log.Debug().
		Str("team", team).
		Int("days", r.maxDays).
		Msg("No record found within search window")
	return RecordResult{Days: r.maxDays}, nil
}

// Format renders a RecordResult as a reply
func (r *RecordResolver) Format(team string, res RecordResult) string {
	if !res.Found {
		which := "last"
		if r.direction == Forward {
			which = "next"
		}
		return fmt.Sprintf("Couldn't find a %s record in the %s %d days.", team, which, r.maxDays)
	}
	return fmt.Sprintf("The %s' record is:  %s - %s", team, res.Wins, res.Losses)
}
