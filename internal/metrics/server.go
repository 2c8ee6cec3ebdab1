package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports the health of one dependency
type HealthCheck func(ctx context.Context) error

// StatsFunc reports point-in-time figures for the health body, e.g. pool stats
type StatsFunc func() map[string]interface{}

// NewRouter serves /metrics and a /health endpoint running checks and
// including stats
func NewRouter(checks map[string]HealthCheck, stats map[string]StatsFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{"status": "healthy"}

		components := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(req.Context()); err != nil {
				components[name] = err.Error()
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				continue
			}
			components[name] = "ok"
		}
		if len(components) > 0 {
			body["components"] = components
		}
		if len(stats) > 0 {
			details := make(map[string]interface{}, len(stats))
			for name, fn := range stats {
				details[name] = fn()
			}
			body["stats"] = details
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})

	return r
}
