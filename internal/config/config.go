package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Team the bot reports on
	TeamName     string `envconfig:"TEAM_NAME" default:"Phillies"`
	TeamTimezone string `envconfig:"TEAM_TIMEZONE" default:"America/New_York"`

	// Telegram
	TelegramTokenFile string `envconfig:"TELEGRAM_TOKEN_FILE" default:"token"`
	TelegramDebug     bool   `envconfig:"TELEGRAM_DEBUG" default:"false"`

	// Gameday feed
	FeedBaseURL       string        `envconfig:"FEED_BASE_URL" default:"http://gd2.mlb.com/components/game/mlb"`
	FeedTimeout       time.Duration `envconfig:"FEED_TIMEOUT" default:"15s"`
	FeedMaxRetries    int           `envconfig:"FEED_MAX_RETRIES" default:"2"`
	FeedRetryDelay    time.Duration `envconfig:"FEED_RETRY_DELAY" default:"500ms"`
	FeedMaxConcurrent int           `envconfig:"FEED_MAX_CONCURRENT" default:"10"`

	// Lookup windows
	RecordSearchDays      int    `envconfig:"RECORD_SEARCH_DAYS" default:"7"`
	RecordSearchDirection string `envconfig:"RECORD_SEARCH_DIRECTION" default:"backward"`
	StatsLookbackDays     int    `envconfig:"STATS_LOOKBACK_DAYS" default:"20"`
	ScheduleDays          int    `envconfig:"SCHEDULE_DAYS" default:"7"`

	// Pending /stats prompts
	PendingTTL           time.Duration `envconfig:"PENDING_TTL" default:"5m"`
	PendingSweepInterval time.Duration `envconfig:"PENDING_SWEEP_INTERVAL" default:"1m"`

	// Dispatch
	BotMaxConcurrent int           `envconfig:"BOT_MAX_CONCURRENT" default:"8"`
	HandlerTimeout   time.Duration `envconfig:"HANDLER_TIMEOUT" default:"60s"`

	// Player table
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"sqlite"`
	DatabaseDSN    string `envconfig:"DATABASE_DSN" default:"players.db"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Scheduler
	EnableScheduler bool     `envconfig:"ENABLE_SCHEDULER" default:"true"`
	AnnounceCron    string   `envconfig:"ANNOUNCE_CRON" default:"0 11 * * *"`
	AnnounceChatIDs []string `envconfig:"ANNOUNCE_CHAT_IDS" default:""`
	SlackWebhookURL string   `envconfig:"SLACK_WEBHOOK_URL" default:""`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TeamName) == "" {
		return fmt.Errorf("TEAM_NAME is required")
	}

	if _, err := time.LoadLocation(c.TeamTimezone); err != nil {
		return fmt.Errorf("TEAM_TIMEZONE %q is not a valid location: %w", c.TeamTimezone, err)
	}

	if c.RecordSearchDays < 1 {
		return fmt.Errorf("RECORD_SEARCH_DAYS must be at least 1")
	}
	if c.StatsLookbackDays < 1 {
		return fmt.Errorf("STATS_LOOKBACK_DAYS must be at least 1")
	}
	if c.ScheduleDays < 1 {
		return fmt.Errorf("SCHEDULE_DAYS must be at least 1")
	}

	switch c.RecordSearchDirection {
	case "forward", "backward":
	default:
		return fmt.Errorf("RECORD_SEARCH_DIRECTION must be forward or backward, got %q", c.RecordSearchDirection)
	}

	if c.BotMaxConcurrent < 1 {
		return fmt.Errorf("BOT_MAX_CONCURRENT must be at least 1")
	}
	if c.FeedMaxConcurrent < 1 {
		return fmt.Errorf("FEED_MAX_CONCURRENT must be at least 1")
	}
	if c.FeedMaxRetries < 0 {
		return fmt.Errorf("FEED_MAX_RETRIES cannot be negative")
	}
	if c.PendingTTL <= 0 {
		return fmt.Errorf("PENDING_TTL must be positive")
	}

	switch strings.ToLower(c.DatabaseDriver) {
	case "sqlite", "sqlite3", "postgres", "postgresql", "pgsql", "pgx":
	default:
		return fmt.Errorf("DATABASE_DRIVER %q is not supported", c.DatabaseDriver)
	}

	if _, err := c.AnnounceChats(); err != nil {
		return err
	}

	return nil
}

// Location returns the team's time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TeamTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AnnounceChats parses ANNOUNCE_CHAT_IDS into Telegram chat IDs
func (c *Config) AnnounceChats() ([]int64, error) {
	var ids []int64
	for _, raw := range c.AnnounceChatIDs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ANNOUNCE_CHAT_IDS entry %q is not a chat id: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ReadToken reads the bot token from the first line of TELEGRAM_TOKEN_FILE
func (c *Config) ReadToken() (string, error) {
	f, err := os.Open(c.TelegramTokenFile)
	if err != nil {
		return "", fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		return "", fmt.Errorf("token file %s is empty", c.TelegramTokenFile)
	}

	token := strings.TrimSpace(scanner.Text())
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", c.TelegramTokenFile)
	}
	return token, nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
