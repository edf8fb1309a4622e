// Package app wires application components and startup helpers.
//
// It provides dependency injection and application initialization.
// The package coordinates between different layers and provides
// a clean application bootstrap process.
package app

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/cvqa/retrieval-engine/internal/adapter/httpserver"
	"github.com/cvqa/retrieval-engine/internal/adapter/observability"
	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/service/ratelimiter"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{"*"}
	}
	if s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// rateLimitMiddleware picks the distributed Redis limiter when one is wired
// (multi-instance deployments) and falls back to the in-memory per-IP
// limiter otherwise.
func rateLimitMiddleware(cfg config.Config, limiter *ratelimiter.RedisLuaLimiter) func(http.Handler) http.Handler {
	if limiter == nil {
		return httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := limiter.Allow(r.Context(), clientIP(r), 1)
			if err == nil && !allowed {
				w.Header().Set("Retry-After", retryAfter.Truncate(time.Second).String())
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the request's remote address without its port, falling
// back to the raw RemoteAddr when it carries no port (e.g. in tests).
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server, limiter *ratelimiter.RedisLuaLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(cfg.TimeoutGenerate + cfg.TimeoutVerify + 10*time.Second))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Group(func(wr chi.Router) {
		wr.Use(rateLimitMiddleware(cfg, limiter))
		wr.Post("/v1/cvs", srv.IngestHandler())
		wr.Delete("/v1/cvs/{id}", srv.DeleteCVHandler())
		wr.Post("/v1/query", srv.QueryHandler())
		wr.Post("/v1/score", srv.ScoreHandler())
	})

	r.Get("/v1/stats", srv.StatsHandler())
	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	return httpserver.SecurityHeaders(r)
}
