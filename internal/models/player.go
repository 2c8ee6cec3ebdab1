package models

import (
	"encoding/xml"
	"fmt"
)

// Player is a row of the local player table
type Player struct {
	PlayerID    string `db:"player_id"`
	DisplayName string `db:"display_name"`
	Position    string `db:"position"`
	Team        string `db:"team"`
}

// Label renders "Bryce Harper (RF, PHI)"
func (p *Player) Label() string {
	return fmt.Sprintf("%s (%s, %s)", p.DisplayName, p.Position, p.Team)
}

// BatterStats is the per-day batter document. Values are cumulative for the
// season as of the document's date, not deltas.
type BatterStats struct {
	XMLName   xml.Name `xml:"Player"`
	ID        string   `xml:"id,attr"`
	FirstName string   `xml:"first_name,attr"`
	LastName  string   `xml:"last_name,attr"`
	Team      string   `xml:"team,attr"`
	Position  string   `xml:"pos,attr"`

	Avg        string `xml:"avg,attr"`
	Hits       string `xml:"s_h,attr"`
	HomeRuns   string `xml:"s_hr,attr"`
	RBI        string `xml:"s_rbi,attr"`
	Strikeouts string `xml:"s_so,attr"`
	Walks      string `xml:"s_bb,attr"`
}
