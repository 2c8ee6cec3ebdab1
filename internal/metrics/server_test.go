package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	router := NewRouter(map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
	}, map[string]StatsFunc{
		"database": func() map[string]interface{} { return map[string]interface{}{"open_conns": 1} },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	stats, ok := body["stats"].(map[string]interface{})
	require.True(t, ok, "health body should carry stats")
	db, ok := stats["database"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), db["open_conns"])
}

func TestHealth_Unhealthy(t *testing.T) {
	router := NewRouter(map[string]HealthCheck{
		"database": func(ctx context.Context) error { return errors.New("database is locked") },
	}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database is locked")
}

func TestMetricsEndpoint(t *testing.T) {
	RecordCommand("score", "success")

	rec := httptest.NewRecorder()
	NewRouter(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "philliesbot_commands_total")
}
