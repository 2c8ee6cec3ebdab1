package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite
)

// Driver names as registered with database/sql
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// normalizeDriver maps config values to registered driver names
func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pgsql", "pgx":
		return DriverPostgres
	default:
		return driver
	}
}

// Database holds the player table connection pool and its repositories
type Database struct {
	DB     *sql.DB
	driver string

	// Repositories
	Players *PlayerRepository
}

// Config holds database configuration
type Config struct {
	Driver  string
	DSN     string
	MaxOpen int
	MaxIdle int
}

// NewDatabase opens the pool, checks it and creates the players table if needed
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	driver := normalizeDriver(cfg.Driver)
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: sqlite, postgres)", cfg.Driver)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%s requires a DSN", driver)
	}

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	maxOpen := cfg.MaxOpen
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 5
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &Database{
		DB:     sqlDB,
		driver: driver,
	}
	db.Players = &PlayerRepository{db: db}

	if err := db.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.Info().
		Str("driver", driver).
		Msg("Successfully connected to player database")

	return db, nil
}

// Driver returns the normalized driver name
func (db *Database) Driver() string {
	return db.driver
}

// Migrate creates the players table if it does not exist
func (db *Database) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS players (
			player_id    TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			position     TEXT NOT NULL DEFAULT '',
			team         TEXT NOT NULL DEFAULT ''
		)
	`
	if _, err := db.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create players table: %w", err)
	}
	return nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.DB != nil {
		if err := db.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing player database")
			return
		}
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.DB.Stats()
	return map[string]interface{}{
		"open_conns": stat.OpenConnections,
		"in_use":     stat.InUse,
		"idle_conns": stat.Idle,
		"max_conns":  stat.MaxOpenConnections,
		"wait_count": stat.WaitCount,
	}
}

// rebind rewrites $n placeholders to ? for SQLite
func (db *Database) rebind(query string) string {
	if db.driver != DriverSQLite {
		return query
	}
	var sb strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			sb.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}
