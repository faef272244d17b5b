package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/telemedko/booking-engine/internal/booking"
)

type RouterConfig struct {
	Service  *booking.Service
	Resolver *booking.Resolver
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Logger   *zap.Logger
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Availability
	r.Get("/doctors/{id}/slots", doctorSlotsHandler(cfg.Resolver))

	// Appointments
	r.Post("/appointments", bookAppointmentHandler(cfg.Service))
	r.Put("/appointments/{id}/status", updateStatusHandler(cfg.Service))
	r.Put("/appointments/{id}/reschedule", rescheduleHandler(cfg.Service))
	r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Service))

	// Private engagements
	r.Post("/engagements", addEngagementHandler(cfg.Service))
	r.Put("/engagements/{id}", updateEngagementHandler(cfg.Service))
	r.Delete("/engagements/{id}", deleteEngagementHandler(cfg.Service))
	r.Get("/doctors/{id}/engagements", listEngagementsHandler(cfg.Service))

	return r
}
