package players

import (
	"fmt"
	"strings"
)

// maxCandidates caps the disambiguation list
const maxCandidates = 15

// Format renders a Result as a chat reply
func (r *Resolver) Format(res Result) string {
	switch res.Kind {
	case UniqueMatch:
		s := res.Stats
		return fmt.Sprintf("%s as of %s: %s AVG, %s H, %s HR, %s RBI, %s K, %s BB",
			res.Player.Label(),
			res.Date.Format("Jan 2"),
			s.Avg, s.Hits, s.HomeRuns, s.RBI, s.Strikeouts, s.Walks,
		)

	case MultipleMatches:
		var sb strings.Builder
		sb.WriteString("Which one did you mean?")
		for i, p := range res.Candidates {
			if i == maxCandidates {
				fmt.Fprintf(&sb, "\n...and %d more", len(res.Candidates)-maxCandidates)
				break
			}
			sb.WriteString("\n- ")
			sb.WriteString(p.Label())
		}
		return sb.String()

	case NoRecentStats:
		return fmt.Sprintf("No recent stats found for %s in the last %d days.", res.Player.DisplayName, r.lookback)

	default:
		return fmt.Sprintf("I don't know who %s is.", res.Query)
	}
}
