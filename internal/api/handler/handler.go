// Package handler provides HTTP handlers for all API endpoints. The
// ingestion endpoint delegates to the pipeline; the notification and
// hotspot endpoints are thin read models over the store.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hathi-labs/tuskwatch/internal/api/respond"
	"github.com/hathi-labs/tuskwatch/internal/pipeline"
	"github.com/hathi-labs/tuskwatch/internal/store"
)

// Ingester runs the detection pipeline for one event.
type Ingester interface {
	Ingest(ctx context.Context, in pipeline.IncomingDetection) (pipeline.Result, error)
}

// ReadStore is the slice of the store the read-model endpoints use.
type ReadStore interface {
	ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]store.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	ActiveHotspots(ctx context.Context) ([]store.Hotspot, error)
}

// HealthChecker verifies database connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pipeline Ingester
	store    ReadStore
	db       HealthChecker
}

// New creates a Handler with shared dependencies.
func New(p Ingester, s ReadStore, db HealthChecker) *Handler {
	return &Handler{pipeline: p, store: s, db: db}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "TuskWatch API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
