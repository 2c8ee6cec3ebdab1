package games

import (
	"context"
	"fmt"
	"strings"
	"time"

	"philliesbot/internal/models"
)

// ScheduleEntry is one upcoming game
type ScheduleEntry struct {
	Date time.Time
	Game models.Game
}

// ScheduleResolver lists the team's games over the coming days
type ScheduleResolver struct {
	games GameFinder
	days  int
}

// NewScheduleResolver creates a resolver covering days days, today included
func NewScheduleResolver(games GameFinder, days int) *ScheduleResolver {
	if days < 1 {
		days = 1
	}
	return &ScheduleResolver{games: games, days: days}
}

// Upcoming returns the team's games from today through the window
func (s *ScheduleResolver) Upcoming(ctx context.Context, team string, today time.Time) ([]ScheduleEntry, error) {
	var entries []ScheduleEntry
	for i := 0; i < s.days; i++ {
		date := today.AddDate(0, 0, i)
		games, err := s.games.FetchGames(ctx, team, date)
		if err != nil {
			return entries, err
		}
		for _, g := range games {
			entries = append(entries, ScheduleEntry{Date: date, Game: g})
		}
	}
	return entries, nil
}

// Format renders entries one game per line
func (s *ScheduleResolver) Format(team string, entries []ScheduleEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No %s games in the next %d days.", team, s.days)
	}

	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		where := "@"
		if e.Game.IsHome(team) {
			where = "vs"
		}
		fmt.Fprintf(&sb, "%s: %s %s %s", e.Date.Format("Mon Jan 2"), where, e.Game.Opponent(team), e.Game.StartTime())
	}
	return sb.String()
}
