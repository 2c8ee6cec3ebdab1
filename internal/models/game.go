package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Scoreboard is the master_scoreboard.json document for one day
type Scoreboard struct {
	Data struct {
		Games struct {
			Year  string   `json:"year"`
			Month string   `json:"month"`
			Day   string   `json:"day"`
			Game  GameList `json:"game"`
		} `json:"games"`
	} `json:"data"`
}

// Games returns the day's game entries
func (s *Scoreboard) Games() []Game {
	return s.Data.Games.Game
}

// GameList decodes the feed's "game" key, which is an array on busy days
// and a bare object when only one game is scheduled.
type GameList []Game

// UnmarshalJSON accepts an array, a single object or null
func (l *GameList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	if trimmed[0] == '[' {
		var games []Game
		if err := json.Unmarshal(trimmed, &games); err != nil {
			return fmt.Errorf("failed to unmarshal game list: %w", err)
		}
		*l = games
		return nil
	}

	var game Game
	if err := json.Unmarshal(trimmed, &game); err != nil {
		return fmt.Errorf("failed to unmarshal single game: %w", err)
	}
	*l = GameList{game}
	return nil
}

// Game is one game entry from the scoreboard feed.
// Nested objects are pointers: nil means the feed has not published them
// (pre-game) or they do not apply.
type Game struct {
	ID             string `json:"id"`
	HomeTeamName   string `json:"home_team_name"`
	AwayTeamName   string `json:"away_team_name"`
	HomeNameAbbrev string `json:"home_name_abbrev"`
	AwayNameAbbrev string `json:"away_name_abbrev"`
	Venue          string `json:"venue"`

	// Scheduled start, local to the home park
	Time     string `json:"time"`
	AMPM     string `json:"ampm"`
	TimeZone string `json:"time_zone"`

	// Season tallies, strings in the feed
	HomeWin  *string `json:"home_win,omitempty"`
	HomeLoss *string `json:"home_loss,omitempty"`
	AwayWin  *string `json:"away_win,omitempty"`
	AwayLoss *string `json:"away_loss,omitempty"`

	Alerts        *Alerts        `json:"alerts,omitempty"`
	Status        *GameStatus    `json:"status,omitempty"`
	Batter        *Batter        `json:"batter,omitempty"`
	RunnersOnBase *RunnersOnBase `json:"runners_on_base,omitempty"`
	Linescore     *Linescore     `json:"linescore,omitempty"`

	Pitcher             *Pitcher `json:"pitcher,omitempty"`
	OpposingPitcher     *Pitcher `json:"opposing_pitcher,omitempty"`
	HomeProbablePitcher *Pitcher `json:"home_probable_pitcher,omitempty"`
	AwayProbablePitcher *Pitcher `json:"away_probable_pitcher,omitempty"`
}

// Alerts carries the feed's human-readable score blurb
type Alerts struct {
	Text string `json:"text"`
}

// GameStatus is the live state of a game
type GameStatus struct {
	Status      string `json:"status"`
	Inning      string `json:"inning"`
	InningState string `json:"inning_state"`
	Outs        string `json:"o"`
}

// Batter is the hitter currently at the plate
type Batter struct {
	ID                string `json:"id"`
	NameDisplayRoster string `json:"name_display_roster"`
	Avg               string `json:"avg"`
}

// RunnersOnBase holds the runner-occupancy code (0-7)
type RunnersOnBase struct {
	Status string `json:"status"`
}

// Linescore holds the run totals
type Linescore struct {
	R *RunTotals `json:"r,omitempty"`
}

// RunTotals are the runs scored by each side
type RunTotals struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// Pitcher is a starting, current or probable pitcher
type Pitcher struct {
	ID     string `json:"id"`
	First  string `json:"first"`
	Last   string `json:"last"`
	Wins   string `json:"wins"`
	Losses string `json:"losses"`
	ERA    string `json:"era"`
}

// HasName reports whether the feed filled in the pitcher.
// Probable pitchers are published as empty objects until announced.
func (p *Pitcher) HasName() bool {
	return p != nil && strings.TrimSpace(p.Last) != ""
}

// Involves returns true if team plays in this game
func (g *Game) Involves(team string) bool {
	return g.HomeTeamName == team || g.AwayTeamName == team
}

// IsHome returns true if team is the home side
func (g *Game) IsHome(team string) bool {
	return g.HomeTeamName == team
}

// Opponent returns the other side's team name
func (g *Game) Opponent(team string) string {
	if g.IsHome(team) {
		return g.AwayTeamName
	}
	return g.HomeTeamName
}

// Record returns team's win and loss tallies; ok is false if either is missing
func (g *Game) Record(team string) (wins, losses string, ok bool) {
	w, l := g.AwayWin, g.AwayLoss
	if g.IsHome(team) {
		w, l = g.HomeWin, g.HomeLoss
	}
	if w == nil || l == nil {
		return "", "", false
	}
	return *w, *l, true
}

// IsFinal returns true once the game is over
func (g *Game) IsFinal() bool {
	if g.Status == nil {
		return false
	}
	switch g.Status.Status {
	case "Final", "Game Over", "Completed Early":
		return true
	}
	return false
}

// StartTime renders the scheduled start, e.g. "7:05 PM"
func (g *Game) StartTime() string {
	if g.AMPM == "" {
		return g.Time
	}
	return fmt.Sprintf("%s %s", g.Time, g.AMPM)
}

// AlertText returns the live alert blurb if the feed published one
func (g *Game) AlertText() (string, bool) {
	if g.Alerts == nil {
		return "", false
	}
	text := strings.TrimSpace(g.Alerts.Text)
	return text, text != ""
}

// RunnersCode parses the runner-occupancy code
func (g *Game) RunnersCode() (int, bool) {
	if g.RunnersOnBase == nil {
		return 0, false
	}
	return parseCount(g.RunnersOnBase.Status)
}

// Outs parses the out count
func (g *Game) Outs() (int, bool) {
	if g.Status == nil {
		return 0, false
	}
	return parseCount(g.Status.Outs)
}

// Inning parses the inning number
func (g *Game) Inning() (int, bool) {
	if g.Status == nil {
		return 0, false
	}
	n, ok := parseCount(g.Status.Inning)
	if !ok || n < 1 {
		return 0, false
	}
	return n, true
}

func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
