// Command loadplayers fills the player table from a CSV export with the
// columns player_id, display_name, position, team. Rows are validated
// first and written in one transaction, so a bad file leaves the table as it was.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"philliesbot/internal/config"
	"philliesbot/internal/models"
	"philliesbot/internal/repository"

	"github.com/rs/zerolog/log"
)

var columns = []string{"player_id", "display_name", "position", "team"}

func main() {
	path := flag.String("file", "players.csv", "CSV file to load")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("Failed to open player file")
	}
	defer f.Close()

	// 1. Validate the whole file before touching the database
	roster, err := parsePlayers(f)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("Player file is invalid")
	}
	if len(roster) == 0 {
		log.Info().Msg("No players in file. Exiting.")
		return
	}
	log.Info().Int("count", len(roster)).Msg("Players parsed")

	db, err := repository.NewDatabase(ctx, repository.Config{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabaseDSN,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open player database")
	}
	defer db.Close()

	// 2. Validate database connectivity
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	// 3. Write every row atomically
	n, err := db.Players.UpsertBatch(ctx, roster)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load players")
	}

	total, err := db.Players.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count players")
	}
	log.Info().Int("loaded", n).Int("total", total).Msg("Player load complete")
}

// parsePlayers reads and validates a player CSV with a header row
func parsePlayers(r io.Reader) ([]models.Player, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = len(columns)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, want := range columns {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return nil, fmt.Errorf("column %d is %q, want %q", i+1, header[i], want)
		}
	}

	seen := make(map[string]int)
	var roster []models.Player
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p := models.Player{
			PlayerID:    strings.TrimSpace(record[0]),
			DisplayName: strings.TrimSpace(record[1]),
			Position:    strings.TrimSpace(record[2]),
			Team:        strings.TrimSpace(record[3]),
		}
		if err := validatePlayer(p); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if prev, dup := seen[p.PlayerID]; dup {
			return nil, fmt.Errorf("line %d: player_id %s already used on line %d", line, p.PlayerID, prev)
		}
		seen[p.PlayerID] = line
		roster = append(roster, p)
	}

	return roster, nil
}

func validatePlayer(p models.Player) error {
	if p.PlayerID == "" {
		return fmt.Errorf("player_id is required")
	}
	for _, c := range p.PlayerID {
		if c < '0' || c > '9' {
			return fmt.Errorf("player_id %q must be numeric", p.PlayerID)
		}
	}
	if p.DisplayName == "" {
		return fmt.Errorf("display_name is required for player %s", p.PlayerID)
	}
	return nil
}
