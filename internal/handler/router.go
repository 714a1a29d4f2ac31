package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"provider-booking-api/internal/middleware"
)

type RouterConfig struct {
	Log            *logrus.Logger
	Secret         string
	CORSOrigins    []string
	RateLimiter    *middleware.RateLimiter
	Observer       middleware.RequestObserver
	MetricsHandler http.Handler
}

// NewRouter mounts every route. Sessions and sign-up are public and
// rate limited; everything else needs a Bearer token.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.Log == nil {
		cfg.Log = h.log
	}
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Log, cfg.Observer))
	r.Use(chimw.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(chimw.Timeout(30 * time.Second))

	r.Group(func(public chi.Router) {
		public.Get("/health", h.Health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Group(func(open chi.Router) {
		if cfg.RateLimiter != nil {
			open.Use(middleware.RateLimit(cfg.RateLimiter))
		}
		open.Post("/users", h.CreateUser)
		open.Post("/sessions", h.CreateSession)
		open.Post("/sessions/refresh", h.RefreshSession)
	})

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Auth(cfg.Secret))

		authed.Put("/users", h.UpdateUser)
		authed.Post("/files", h.UploadFile)

		authed.Get("/providers", h.ListProviders)
		authed.Get("/providers/{providerId}/available", h.Availability)

		authed.Get("/appointments", h.ListAppointments)
		authed.Post("/appointments", h.CreateAppointment)
		authed.Delete("/appointments/{id}", h.CancelAppointment)

		authed.Get("/schedule", h.Schedule)

		authed.Get("/notifications", h.ListNotifications)
		authed.Put("/notifications/{id}", h.MarkNotificationRead)
	})

	return r
}
