package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"philliesbot/internal/client"
	"philliesbot/internal/models"
	"philliesbot/internal/players"
	"philliesbot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoster map[string]models.Player

func (s stubRoster) GetByID(ctx context.Context, playerID string) (*models.Player, error) {
	p, ok := s[playerID]
	if !ok {
		return nil, repository.ErrPlayerNotFound
	}
	return &p, nil
}

type stubBatters map[string]*models.BatterStats

func (s stubBatters) FetchBatterStats(ctx context.Context, date time.Time, playerID string) (*models.BatterStats, error) {
	doc, ok := s[playerID]
	if !ok {
		return nil, fmt.Errorf("failed to fetch batter stats: %w", client.ErrNotFound)
	}
	return doc, nil
}

func TestPlayerLine(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2016, 5, 3, 0, 0, 0, 0, time.UTC)
	roster := stubRoster{
		"547180": {PlayerID: "547180", DisplayName: "Bryce Harper", Position: "RF", Team: "PHI"},
		"656941": {PlayerID: "656941", DisplayName: "Kyle Schwarber", Position: "LF", Team: "PHI"},
	}
	batters := stubBatters{
		"547180": {Avg: ".286", Hits: "30", HomeRuns: "9", RBI: "24", Strikeouts: "25", Walks: "20"},
	}
	resolver := players.NewResolver(nil, batters, 20)

	line, err := playerLine(ctx, roster, batters, resolver, "547180", date)
	require.NoError(t, err)
	assert.Equal(t, "Bryce Harper (RF, PHI) as of May 3: .286 AVG, 30 H, 9 HR, 24 RBI, 25 K, 20 BB", line)

	line, err = playerLine(ctx, roster, batters, resolver, "656941", date)
	require.NoError(t, err, "missing document is not an error")
	assert.Equal(t, "Kyle Schwarber (LF, PHI): no stats published for May 3", line)

	_, err = playerLine(ctx, roster, batters, resolver, "1", date)
	assert.ErrorIs(t, err, repository.ErrPlayerNotFound)
}
