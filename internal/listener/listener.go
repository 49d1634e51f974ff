// Package listener provides a Postgres LISTEN/NOTIFY consumer for hotspot
// change events. It holds a dedicated pgx connection (not from the pool)
// listening on the `hotspot_changed` channel.
//
// Administrative flows create and edit hotspots directly in the database,
// outside this service. The schema trigger fires pg_notify on every
// insert/update/delete; this consumer relays the event to the websocket
// hub so live map clients refresh their zone overlays without polling.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hathi-labs/tuskwatch/internal/ws"
)

const (
	channel          = "hotspot_changed"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// HotspotEvent is the JSON payload from pg_notify('hotspot_changed', ...).
type HotspotEvent struct {
	Op       string `json:"op"` // INSERT | UPDATE | DELETE
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
}

// Broadcaster is the hub surface the listener publishes to.
type Broadcaster interface {
	Publish(topic string, payload any)
}

// Start opens a dedicated connection and listens on the hotspot_changed
// channel. It reconnects automatically on connection loss. Blocks until
// ctx is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, hub Broadcaster, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, hub, logger)
		if ctx.Err() != nil {
			logger.Info("Hotspot listener stopped (context cancelled)")
			return
		}

		logger.Error("Hotspot listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection
// drops or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, hub Broadcaster, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Hotspot listener connected", "channel", channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		var event HotspotEvent
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			logger.Warn("Failed to parse hotspot event",
				"payload", notification.Payload, "error", err)
			continue
		}

		logger.Info("Hotspot change received",
			"op", event.Op, "hotspot_id", event.ID, "name", event.Name, "active", event.IsActive)

		hub.Publish(ws.TopicHotspots, event)
	}
}
