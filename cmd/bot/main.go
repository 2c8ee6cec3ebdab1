package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"philliesbot/internal/bot"
	"philliesbot/internal/cache"
	"philliesbot/internal/client"
	"philliesbot/internal/config"
	"philliesbot/internal/games"
	"philliesbot/internal/metrics"
	"philliesbot/internal/notify"
	"philliesbot/internal/players"
	"philliesbot/internal/repository"
	"philliesbot/internal/scheduler"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Setup logger
	setupLogger(cfg)

	log.Info().Msg("Starting PhilliesBot")
	log.Info().
		Str("env", cfg.AppEnv).
		Str("team", cfg.TeamName).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	token, err := cfg.ReadToken()
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.TelegramTokenFile).Msg("Failed to read bot token")
	}

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Gameday feed client
	feed := client.NewClient(cfg.FeedBaseURL, client.Options{
		Timeout:       cfg.FeedTimeout,
		MaxRetries:    cfg.FeedMaxRetries,
		RetryDelay:    cfg.FeedRetryDelay,
		MaxConcurrent: cfg.FeedMaxConcurrent,
	})
	log.Info().Str("base_url", cfg.FeedBaseURL).Msg("Gameday client initialized")

	// Player table
	db, err := repository.NewDatabase(ctx, repository.Config{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabaseDSN,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open player database")
	}
	defer db.Close()
	log.Info().Str("driver", db.Driver()).Msg("Player database opened")

	if n, err := db.Players.Count(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to count players")
	} else if n == 0 {
		log.Warn().Msg("Player table is empty, /stats will not find anyone (see cmd/loadplayers)")
	} else {
		log.Info().Int("players", n).Msg("Player table ready")
	}

	// Pending /stats prompts
	pending, memStore, closeRedis := setupPendingStore(ctx, cfg)
	defer closeRedis()

	// Lookups
	fetcher := games.NewFetcher(feed)
	direction, err := games.ParseDirection(cfg.RecordSearchDirection)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid record search direction")
	}
	record := games.NewRecordResolver(fetcher, cfg.RecordSearchDays, direction)
	schedule := games.NewScheduleResolver(fetcher, cfg.ScheduleDays)
	resolver := players.NewResolver(db.Players, feed, cfg.StatsLookbackDays)
	log.Info().
		Int("record_days", cfg.RecordSearchDays).
		Str("record_direction", cfg.RecordSearchDirection).
		Int("stats_lookback_days", resolver.Lookback()).
		Msg("Lookups initialized")

	// Chat transport
	transport, err := bot.NewTelegramTransport(token, bot.TransportOptions{
		MaxConcurrent:  cfg.BotMaxConcurrent,
		HandlerTimeout: cfg.HandlerTimeout,
		Debug:          cfg.TelegramDebug,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start telegram transport")
	}

	dispatcher := bot.NewDispatcher(bot.Config{
		Team:       cfg.TeamName,
		Location:   cfg.Location(),
		PendingTTL: cfg.PendingTTL,
		Games:      fetcher,
		Record:     record,
		Schedule:   schedule,
		Players:    resolver,
		Pending:    pending,
		Sender:     transport,
	})

	// Start metrics HTTP server
	var opsServer *http.Server
	if cfg.EnableMetrics {
		opsServer = startMetricsServer(cfg.MetricsPort, map[string]metrics.HealthCheck{
			"database": db.Health,
		}, map[string]metrics.StatsFunc{
			"database": db.PoolStats,
		})
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	chatIDs, _ := cfg.AnnounceChats()
	var sinks []notify.Sink
	if len(chatIDs) > 0 {
		sinks = append(sinks, notify.NewTelegramSink(transport, chatIDs))
	}
	if cfg.SlackWebhookURL != "" {
		sinks = append(sinks, notify.NewSlackSink(cfg.SlackWebhookURL))
	}
	fanout := notify.NewFanout(sinks...)

	schedCfg := scheduler.Config{
		Team:          cfg.TeamName,
		Location:      cfg.Location(),
		Games:         fetcher,
		SweepInterval: cfg.PendingSweepInterval,
	}
	if memStore != nil {
		schedCfg.Sweeper = memStore
	}
	if fanout.Len() > 0 {
		schedCfg.AnnounceCron = cfg.AnnounceCron
		schedCfg.Publisher = fanout
	} else {
		log.Info().Msg("No announcement sinks configured, game-day announcements disabled")
	}
	sched := scheduler.NewScheduler(schedCfg)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Run until the context is cancelled
	if err := transport.Run(ctx, dispatcher); err != nil {
		log.Error().Err(err).Msg("Update loop exited")
		cancel()
	}

	// Graceful shutdown
	if cfg.EnableScheduler {
		log.Info().Msg("Shutting down scheduler...")
		sched.Stop()
	}

	if opsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
		shutdownCancel()
	}

	log.Info().Msg("Bot shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger(cfg *config.Config) {
	// Pretty console logging in development
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := cfg.LogLevel; lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// setupPendingStore prefers Redis and falls back to memory. The memory store
// is returned separately so the scheduler can sweep it.
func setupPendingStore(ctx context.Context, cfg *config.Config) (cache.PendingStore, *cache.MemoryStore, func()) {
	if cfg.RedisEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis pending store connected")
			return cache.NewRedisStore(rdb), nil, func() { rdb.Close() }
		}

		rdb.Close()
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing with in-memory pending store")
	}

	mem := cache.NewMemoryStore()
	return mem, mem, func() {}
}

// startMetricsServer starts the Prometheus metrics and health HTTP server
func startMetricsServer(port int, checks map[string]metrics.HealthCheck, stats map[string]metrics.StatsFunc) *http.Server {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           metrics.NewRouter(checks, stats),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Int("port", port).Msg("Starting metrics server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	return server
}
