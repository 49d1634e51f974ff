// Package api assembles the chi router: middleware stack, health and
// documentation routes, the ingestion endpoint, read models, and the
// websocket upgrade.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/hathi-labs/tuskwatch/internal/api/handler"
	"github.com/hathi-labs/tuskwatch/internal/config"
	"github.com/hathi-labs/tuskwatch/internal/ws"
)

// NewRouter creates and configures the Chi router with all middleware and
// routes.
func NewRouter(h *handler.Handler, wsHandler *ws.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time", "Link"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Live broadcast channel
	r.Get("/ws", wsHandler.Serve)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Ingestion
		r.Post("/detections", h.CreateDetection)

		// Notification audit trail
		r.Get("/notifications/{userID}", h.ListNotifications)
		r.Post("/notifications/{id}/read", h.MarkNotificationRead)

		// Hotspot read model
		r.Get("/hotspots", h.ListHotspots)
	})

	return r
}
