package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"philliesbot/internal/metrics"
	"philliesbot/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrPlayerNotFound is returned by GetByID when no row matches
var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository handles player table operations
type PlayerRepository struct {
	db *Database
}

// NamePattern turns a free-text query into a case-sensitive match pattern.
// Spaces act as wildcards and the pattern matches anywhere in the name:
// "Har per" becomes *Har*per* for GLOB and %Har%per% for LIKE.
// ok is false when the query is blank.
func NamePattern(driver, query string) (pattern string, ok bool) {
	parts := strings.Fields(query)
	if len(parts) == 0 {
		return "", false
	}

	wildcard, escape := "%", escapeLike
	if driver == DriverSQLite {
		wildcard, escape = "*", escapeGlob
	}

	for i, p := range parts {
		parts[i] = escape(p)
	}
	return wildcard + strings.Join(parts, wildcard) + wildcard, true
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`[`, `[[]`, `*`, `[*]`, `?`, `[?]`)
	return r.Replace(s)
}

// SearchByName returns every player whose display name matches query
func (r *PlayerRepository) SearchByName(ctx context.Context, query string) ([]models.Player, error) {
	pattern, ok := NamePattern(r.db.driver, query)
	if !ok {
		return nil, nil
	}

	stmt := `
		SELECT player_id, display_name, position, team
		FROM players
		WHERE display_name LIKE $1 ESCAPE '\'
		ORDER BY display_name, player_id
	`
	if r.db.driver == DriverSQLite {
		stmt = `
			SELECT player_id, display_name, position, team
			FROM players
			WHERE display_name GLOB $1
			ORDER BY display_name, player_id
		`
	}

	rows, err := r.db.DB.QueryContext(ctx, r.db.rebind(stmt), pattern)
	if err != nil {
		metrics.RecordDBQuery("search_players", "error")
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.PlayerID, &p.DisplayName, &p.Position, &p.Team); err != nil {
			metrics.RecordDBQuery("search_players", "error")
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordDBQuery("search_players", "error")
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	metrics.RecordDBQuery("search_players", "success")
	log.Debug().
		Str("query", query).
		Str("pattern", pattern).
		Int("matches", len(players)).
		Msg("Player search complete")

	return players, nil
}

// GetByID retrieves a player by feed identifier
func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (*models.Player, error) {
	query := `
		SELECT player_id, display_name, position, team
		FROM players
		WHERE player_id = $1
	`

	var p models.Player
	err := r.db.DB.QueryRowContext(ctx, r.db.rebind(query), playerID).
		Scan(&p.PlayerID, &p.DisplayName, &p.Position, &p.Team)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("get_player", "not_found")
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		metrics.RecordDBQuery("get_player", "error")
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	metrics.RecordDBQuery("get_player", "success")
	return &p, nil
}

// UpsertBatch writes players in one transaction and returns how many were written
func (r *PlayerRepository) UpsertBatch(ctx context.Context, players []models.Player) (int, error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.db.rebind(`
		INSERT INTO players (player_id, display_name, position, team)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			position = EXCLUDED.position,
			team = EXCLUDED.team
	`)

	for i, p := range players {
		if _, err := tx.ExecContext(ctx, query, p.PlayerID, p.DisplayName, p.Position, p.Team); err != nil {
			metrics.RecordDBQuery("upsert_player", "error")
			return 0, fmt.Errorf("failed to upsert player %s (row %d): %w", p.PlayerID, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit players: %w", err)
	}

	metrics.RecordDBQuery("upsert_player", "success")
	log.Info().Int("count", len(players)).Msg("Players upserted")
	return len(players), nil
}

// Count returns the number of rows in the player table
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM players").Scan(&n); err != nil {
		metrics.RecordDBQuery("count_players", "error")
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	metrics.RecordDBQuery("count_players", "success")
	return n, nil
}
