// Command fetchday prints the bot's game replies for one date straight from
// the feed, without going through the chat transport. With -player it prints
// that player's batting line for the date instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"philliesbot/internal/client"
	"philliesbot/internal/config"
	"philliesbot/internal/games"
	"philliesbot/internal/models"
	"philliesbot/internal/players"
	"philliesbot/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	dateFlag := flag.String("date", "", "date to fetch (YYYY-MM-DD), defaults to today in TEAM_TIMEZONE")
	playerFlag := flag.String("player", "", "player_id to print the batting line for")
	flag.Parse()

	cfg := config.MustLoad()
	loc := cfg.Location()

	date := time.Now().In(loc)
	if *dateFlag != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *dateFlag, loc)
		if err != nil {
			log.Fatal().Err(err).Str("date", *dateFlag).Msg("Invalid date")
		}
		date = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HandlerTimeout)
	defer cancel()

	feed := client.NewClient(cfg.FeedBaseURL, client.Options{
		Timeout:       cfg.FeedTimeout,
		MaxRetries:    cfg.FeedMaxRetries,
		RetryDelay:    cfg.FeedRetryDelay,
		MaxConcurrent: cfg.FeedMaxConcurrent,
	})

	if *playerFlag != "" {
		db, err := repository.NewDatabase(ctx, repository.Config{
			Driver: cfg.DatabaseDriver,
			DSN:    cfg.DatabaseDSN,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open player database")
		}
		defer db.Close()

		line, err := playerLine(ctx, db.Players, feed, players.NewResolver(db.Players, feed, cfg.StatsLookbackDays), *playerFlag, date)
		if err != nil {
			log.Error().Err(err).Str("player_id", *playerFlag).Msg("Failed to fetch player")
			return
		}
		fmt.Println(line)
		return
	}

	fetcher := games.NewFetcher(feed)

	found, err := fetcher.FetchGames(ctx, cfg.TeamName, date)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch scoreboard")
	}

	log.Info().
		Str("team", cfg.TeamName).
		Str("date", date.Format("2006-01-02")).
		Int("games", len(found)).
		Msg("Scoreboard fetched")

	if len(found) == 0 {
		fmt.Println(games.OffToday(cfg.TeamName))
		return
	}

	for i := range found {
		g := &found[i]
		fmt.Printf("score:    %s\n", games.FormatScore(cfg.TeamName, g))
		fmt.Printf("status:   %s\n", games.FormatStatus(cfg.TeamName, g))
		fmt.Printf("pitchers: %s\n", games.FormatPitchers(cfg.TeamName, g))
		if w, l, ok := g.Record(cfg.TeamName); ok {
			fmt.Printf("record:   %s - %s\n", w, l)
		}
	}
}

// playerGetter loads one player row
type playerGetter interface {
	GetByID(ctx context.Context, playerID string) (*models.Player, error)
}

// playerLine renders playerID's batting document for date
func playerLine(ctx context.Context, roster playerGetter, stats players.StatsSource, resolver *players.Resolver, playerID string, date time.Time) (string, error) {
	p, err := roster.GetByID(ctx, playerID)
	if err != nil {
		return "", err
	}

	doc, err := stats.FetchBatterStats(ctx, date, playerID)
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Sprintf("%s: no stats published for %s", p.Label(), date.Format("Jan 2")), nil
	}
	if err != nil {
		return "", err
	}

	return resolver.Format(players.Result{
		Kind:   players.UniqueMatch,
		Query:  playerID,
		Player: p,
		Stats:  doc,
		Date:   date,
		Days:   1,
	}), nil
}
