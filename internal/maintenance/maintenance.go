// Package maintenance runs periodic background tasks as Go tickers.
// All scheduled work is driven from the API process since it is already a
// persistent, long-running service (required for LISTEN/NOTIFY and the
// websocket hub).
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/hathi-labs/tuskwatch/internal/store"
)

// Config controls maintenance task intervals and thresholds. A zero
// interval disables a task.
type Config struct {
	DeviceSweepInterval time.Duration // How often to check for silent devices
	DeviceOfflineAfter  time.Duration // Silence threshold before marking offline
	RetentionInterval   time.Duration // How often to purge old notifications
	RetentionAge        time.Duration // Read notifications older than this are deleted
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		DeviceSweepInterval: 5 * time.Minute,
		DeviceOfflineAfter:  30 * time.Minute,
		RetentionInterval:   6 * time.Hour,
		RetentionAge:        90 * 24 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, st *store.Store, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"device_sweep", cfg.DeviceSweepInterval,
		"retention", cfg.RetentionInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Device sweep: a sensor that stops reporting goes offline.
	if cfg.DeviceSweepInterval > 0 {
		t := time.NewTicker(cfg.DeviceSweepInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { sweepDevices(ctx, st, cfg.DeviceOfflineAfter, logger) })
	}

	// Retention: old read notifications are only audit noise.
	if cfg.RetentionInterval > 0 {
		t := time.NewTicker(cfg.RetentionInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { purgeNotifications(ctx, st, cfg.RetentionAge, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

func sweepDevices(ctx context.Context, st *store.Store, threshold time.Duration, logger *slog.Logger) {
	n, err := st.SweepStaleDevices(ctx, threshold.Seconds())
	if err != nil {
		logger.Error("device sweep failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("devices marked offline", "count", n, "silent_for", threshold)
	}
}

func purgeNotifications(ctx context.Context, st *store.Store, age time.Duration, logger *slog.Logger) {
	n, err := st.PurgeReadNotifications(ctx, age.Seconds())
	if err != nil {
		logger.Error("notification purge failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("old notifications purged", "count", n)
	}
}
