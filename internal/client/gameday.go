package client

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"philliesbot/internal/metrics"
	"philliesbot/internal/models"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound means the feed has no document for the requested day
	ErrNotFound = errors.New("feed document not found")

	// ErrRetryable marks throttling and gateway failures
	ErrRetryable = errors.New("feed returned retryable status")
)

// Options tunes the gameday client
type Options struct {
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxConcurrent int
}

// Client is the MLB gameday feed client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a new gameday feed client
func NewClient(baseURL string, opts Options) *Client {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	rateLimiter := make(chan struct{}, opts.MaxConcurrent)
	for i := 0; i < opts.MaxConcurrent; i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rateLimiter,
		maxRetries:  opts.MaxRetries,
		retryDelay:  opts.RetryDelay,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// dayPath renders the year_/month_/day_ directory for date
func dayPath(date time.Time) string {
	return fmt.Sprintf("year_%04d/month_%02d/day_%02d", date.Year(), int(date.Month()), date.Day())
}

// ScoreboardURL returns the scoreboard document URL for date
func (c *Client) ScoreboardURL(date time.Time) string {
	return fmt.Sprintf("%s/%s/master_scoreboard.json", c.baseURL, dayPath(date))
}

// BatterURL returns the per-batter document URL for date
func (c *Client) BatterURL(date time.Time, playerID string) string {
	return fmt.Sprintf("%s/%s/batters/%s.xml", c.baseURL, dayPath(date), playerID)
}

// get performs a GET request against the feed with retry logic and rate limiting
func (c *Client) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Debug().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying feed request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retry, err := c.do(ctx, endpoint, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

// do runs a single attempt; retry reports whether another attempt may succeed
func (c *Client) do(ctx context.Context, endpoint, url string) (body []byte, retry bool, err error) {
	// Rate limiting: acquire semaphore
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-c.rateLimiter:
	}
	defer func() { c.rateLimiter <- struct{}{} }()

	start := time.Now()
	status := "error"
	defer func() {
		metrics.RecordFeedRequest(endpoint, status, time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "PhilliesBot/2.0")

	log.Debug().
		Str("url", url).
		Str("endpoint", endpoint).
		Msg("Making feed request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Retry on network errors
		return nil, true, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	status = fmt.Sprintf("%d", resp.StatusCode)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("Feed request successful")
		return body, false, nil

	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusGone:
		// The feed answers 403/404 for days it never published
		return nil, false, fmt.Errorf("%w: status %d for %s", ErrNotFound, resp.StatusCode, url)

	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout,
		resp.StatusCode == http.StatusBadGateway:
		log.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("Received retryable feed status")
		return nil, true, fmt.Errorf("%w: status %d", ErrRetryable, resp.StatusCode)

	default:
		return nil, false, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
}

// FetchScoreboard fetches and decodes the scoreboard for date
func (c *Client) FetchScoreboard(ctx context.Context, date time.Time) (*models.Scoreboard, error) {
	body, err := c.get(ctx, "scoreboard", c.ScoreboardURL(date))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}

	var sb models.Scoreboard
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scoreboard: %w", err)
	}

	return &sb, nil
}

// FetchBatterStats fetches and decodes one batter's document for date
func (c *Client) FetchBatterStats(ctx context.Context, date time.Time, playerID string) (*models.BatterStats, error) {
	body, err := c.get(ctx, "batter", c.BatterURL(date, playerID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch batter stats: %w", err)
	}

	var stats models.BatterStats
	if err := xml.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batter stats: %w", err)
	}

	return &stats, nil
}
