package games

import (
	"fmt"
	"strings"

	"philliesbot/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
)

// runnerPhrases maps the feed's runner-occupancy code to a phrase
var runnerPhrases = [...]string{
	0: "the bases empty",
	1: "a runner on first",
	2: "a runner on second",
	3: "a runner on third",
	4: "runners on first and second",
	5: "runners on first and third",
	6: "runners on second and third",
	7: "the bases loaded",
}

// RunnersPhrase returns the phrase for a runner-occupancy code
func RunnersPhrase(code int) (string, bool) {
	if code < 0 || code >= len(runnerPhrases) {
		return "", false
	}
	return runnerPhrases[code], true
}

// OffToday is the reply when team has no game
func OffToday(team string) string {
	return fmt.Sprintf("%s are off today", team)
}

// FormatScore reports the score, the start time before first pitch, or an
// off-day message when game is nil.
func FormatScore(team string, game *models.Game) string {
	if game == nil {
		return OffToday(team)
	}

	if text, ok := game.AlertText(); ok {
		return text
	}

	if game.IsFinal() && game.Linescore != nil && game.Linescore.R != nil {
		r := game.Linescore.R
		return fmt.Sprintf("Final: %s %s, %s %s", game.AwayTeamName, r.Away, game.HomeTeamName, r.Home)
	}

	zone := game.TimeZone
	if zone == "" {
		zone = "ET"
	}
	return fmt.Sprintf("Looks like the %s haven't played yet. The game starts at %s %s", team, game.StartTime(), zone)
}

// liveStatus is the set of fields the status sentence needs
type liveStatus struct {
	inningState string
	inning      int
	outs        int
	batter      string
	avg         string
	runners     string
}

// readLiveStatus collects the live fields; ok is false if any is missing
func readLiveStatus(game *models.Game) (liveStatus, bool) {
	var st liveStatus
	if game == nil || game.Status == nil || game.Batter == nil {
		return st, false
	}

	st.inningState = strings.TrimSpace(game.Status.InningState)
	st.batter = strings.TrimSpace(game.Batter.NameDisplayRoster)
	st.avg = strings.TrimSpace(game.Batter.Avg)
	if st.inningState == "" || st.batter == "" || st.avg == "" {
		return st, false
	}

	var ok bool
	if st.inning, ok = game.Inning(); !ok {
		return st, false
	}
	if st.outs, ok = game.Outs(); !ok {
		return st, false
	}

	code, ok := game.RunnersCode()
	if !ok {
		return st, false
	}
	if st.runners, ok = RunnersPhrase(code); !ok {
		return st, false
	}

	return st, true
}

// FormatStatus renders the live situation as one sentence, falling back to
// FormatScore when the feed has no live data for the game.
func FormatStatus(team string, game *models.Game) string {
	st, ok := readLiveStatus(game)
	if !ok {
		return FormatScore(team, game)
	}

	return fmt.Sprintf("%s of the %s with %d %s - %s (%s AVG) with %s.",
		st.inningState,
		humanize.Ordinal(st.inning),
		st.outs,
		english.PluralWord(st.outs, "out", ""),
		st.batter,
		st.avg,
		st.runners,
	)
}

// Tier names which pitcher data a matchup was built from
type Tier int

const (
	TierNone Tier = iota
	TierProbable
	TierConfirmed
)

func (t Tier) String() string {
	switch t {
	case TierConfirmed:
		return "confirmed"
	case TierProbable:
		return "probable"
	default:
		return "none"
	}
}

// PitcherTier picks confirmed starters over probables
func PitcherTier(game *models.Game) Tier {
	switch {
	case game == nil:
		return TierNone
	case game.Pitcher.HasName() && game.OpposingPitcher.HasName():
		return TierConfirmed
	case game.HomeProbablePitcher.HasName() && game.AwayProbablePitcher.HasName():
		return TierProbable
	default:
		return TierNone
	}
}

func pitcherLine(p *models.Pitcher) string {
	return fmt.Sprintf("%s(%s-%s, ERA:%s)", p.Last, p.Wins, p.Losses, p.ERA)
}

// FormatPitchers renders the pitching matchup
func FormatPitchers(team string, game *models.Game) string {
	switch PitcherTier(game) {
	case TierConfirmed:
		return pitcherLine(game.Pitcher) + " vs. " + pitcherLine(game.OpposingPitcher)
	case TierProbable:
		return "Probables: " + pitcherLine(game.HomeProbablePitcher) + " vs. " + pitcherLine(game.AwayProbablePitcher)
	default:
		return fmt.Sprintf("%s aren't playing today", team)
	}
}
