// Command api is the TuskWatch detection alerting server.
//
// Usage:
//
//	tuskwatch-api
//	API_PORT=8080 tuskwatch-api

// @title TuskWatch API
// @version 1.0.0
// @description Elephant detection alerting service: ingests field-sensor sighting events, matches them against hotspot alert zones, fans out push notifications, and broadcasts live events over websocket.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name TuskWatch
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/hathi-labs/tuskwatch/internal/api"
	"github.com/hathi-labs/tuskwatch/internal/api/handler"
	"github.com/hathi-labs/tuskwatch/internal/config"
	"github.com/hathi-labs/tuskwatch/internal/db"
	"github.com/hathi-labs/tuskwatch/internal/dispatch"
	"github.com/hathi-labs/tuskwatch/internal/geofence"
	"github.com/hathi-labs/tuskwatch/internal/listener"
	"github.com/hathi-labs/tuskwatch/internal/maintenance"
	"github.com/hathi-labs/tuskwatch/internal/pipeline"
	"github.com/hathi-labs/tuskwatch/internal/push"
	"github.com/hathi-labs/tuskwatch/internal/store"
	"github.com/hathi-labs/tuskwatch/internal/ws"

	_ "github.com/hathi-labs/tuskwatch/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	st := store.New(pool.Pool)

	// Live broadcast hub
	hub := ws.NewHub(logger)
	go hub.Heartbeat(ctx, 30*time.Second)

	// Push providers — each independently optional
	var mobile dispatch.MobileSender
	fcm, err := push.NewFCMSender(ctx, cfg.FirebaseCredentialsFile, logger)
	if err != nil {
		logger.Error("Failed to init FCM", "error", err)
		os.Exit(1)
	}
	if fcm != nil {
		mobile = fcm
		logger.Info("Mobile push enabled (FCM)")
	} else {
		logger.Info("Mobile push disabled (no FIREBASE_CREDENTIALS_FILE)")
	}

	var web dispatch.WebSender
	if wp := push.NewWebPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber, logger); wp != nil {
		web = wp
		logger.Info("Browser push enabled (Web Push)")
	} else {
		logger.Info("Browser push disabled (no VAPID keys)")
	}

	// Pipeline wiring
	dispatcher := dispatch.New(mobile, web, st, logger)
	matcher := geofence.NewMatcher(st)
	pipe := pipeline.New(st, matcher, dispatcher, hub, cfg.PipelineTimeout, logger)

	// Hotspot change relay for live map clients
	go listener.Start(ctx, cfg.DatabaseURL, hub, logger)

	// Maintenance tickers (device offline sweep, notification retention)
	maintCfg := maintenance.DefaultConfig()
	maintCfg.DeviceOfflineAfter = cfg.DeviceOfflineAfter
	maintCfg.RetentionAge = cfg.NotificationRetention
	go maintenance.Start(ctx, st, maintCfg, logger)

	// Create router
	h := handler.New(pipe, st, pool)
	router := api.NewRouter(h, ws.NewHandler(hub), cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting TuskWatch API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
