package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/turnoshq/turnos-api/internal/auth"
	"github.com/turnoshq/turnos-api/internal/metrics"
	"github.com/turnoshq/turnos-api/internal/ratelimit"
)

type RouterConfig struct {
	Service  AppointmentService
	DB       *sql.DB
	Redis    *redis.Client      // nil when the local day guard is in use
	Verifier *auth.Verifier     // nil leaves write endpoints open
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Metrics   // nil disables /metrics
	Logger   *zap.Logger
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
	}

	health := NewHealthHandler(cfg.DB, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	requireAuth := cfg.Verifier != nil

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimitMiddleware(cfg.Limiter))

		r.Get("/info", infoHandler(cfg.Env, cfg.Version, requireAuth))
		r.Get("/appointments", listAppointmentsHandler(cfg.Service))

		r.Group(func(r chi.Router) {
			if requireAuth {
				r.Use(AuthMiddleware(cfg.Verifier))
			}
			r.Post("/appointments", createAppointmentHandler(cfg.Service))
			r.Put("/appointments/{id}", updateAppointmentHandler(cfg.Service))
			r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Service))
		})
	})

	return r
}
