package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, Options{
		Timeout:       2 * time.Second,
		MaxRetries:    2,
		RetryDelay:    time.Millisecond,
		MaxConcurrent: 2,
	})
}

func TestClient_URLs(t *testing.T) {
	c := newTestClient("http://feed.example/components/game/mlb/")
	date := time.Date(2016, time.May, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t,
		"http://feed.example/components/game/mlb/year_2016/month_05/day_03/master_scoreboard.json",
		c.ScoreboardURL(date))
	assert.Equal(t,
		"http://feed.example/components/game/mlb/year_2016/month_05/day_03/batters/547180.xml",
		c.BatterURL(date, "547180"))
}

func TestClient_FetchScoreboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/year_2016/month_05/day_03/master_scoreboard.json", r.URL.Path)
		w.Write([]byte(`{"data":{"games":{"game":[{"home_team_name":"Phillies","away_team_name":"Mets"}]}}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	sb, err := c.FetchScoreboard(context.Background(), time.Date(2016, time.May, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, sb.Games(), 1)
	assert.Equal(t, "Mets", sb.Games()[0].AwayTeamName)
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchScoreboard(context.Background(), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_RetriesThrottling(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`<Player id="1" avg=".300" s_hr="4"/>`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	stats, err := c.FetchBatterStats(context.Background(), time.Now(), "1")
	require.NoError(t, err)
	assert.Equal(t, ".300", stats.Avg)
	assert.Equal(t, "4", stats.HomeRuns)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchScoreboard(context.Background(), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetryable))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "one attempt plus two retries")
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchScoreboard(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(srv.URL)
	_, err := c.FetchScoreboard(ctx, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
