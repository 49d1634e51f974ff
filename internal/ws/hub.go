// Package ws provides the live broadcast channel: a topic-keyed registry of
// websocket connections with fire-and-forget publishing. Publishers never
// block on reader state; a connection that fails a write is dropped.
package ws

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Topics published by the ingestion pipeline and the hotspot listener.
const (
	TopicDetections = "detections"
	TopicProximity  = "proximity"
	TopicHotspots   = "hotspots"
)

const writeTimeout = 5 * time.Second

// Envelope wraps every published message with its topic and send time.
type Envelope struct {
	Topic string    `json:"topic"`
	Data  any       `json:"data"`
	At    time.Time `json:"at"`
}

// Conn wraps a websocket connection with its topic subscriptions and a
// write lock (gorilla allows one concurrent writer). lastSeen is atomic:
// the reader goroutine stamps it from the pong handler while Heartbeat
// reads it.
type Conn struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	topics   map[string]struct{}
	lastSeen atomic.Int64 // UnixNano
}

func (c *Conn) subscribed(topic string) bool {
	_, ok := c.topics[topic]
	return ok
}

func (c *Conn) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *Conn) idle() time.Duration {
	return time.Since(time.Unix(0, c.lastSeen.Load()))
}

func (c *Conn) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Hub maintains the set of live connections.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*Conn]struct{}
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[*Conn]struct{}),
		logger: logger,
	}
}

// Add registers a connection subscribed to the given topics.
func (h *Hub) Add(wsConn *websocket.Conn, topics []string) *Conn {
	c := &Conn{
		conn:   wsConn,
		topics: make(map[string]struct{}, len(topics)),
	}
	c.touch()
	for _, t := range topics {
		c.topics[t] = struct{}{}
	}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("ws connected", "topics", topics, "total", total)
	return c
}

// Remove closes and deregisters a connection.
func (h *Hub) Remove(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Publish sends the payload to every connection subscribed to topic.
// Fire-and-forget: no acknowledgment, no delivery guarantee, and a write
// failure drops the connection without affecting other subscribers.
func (h *Hub) Publish(topic string, payload any) {
	env := Envelope{Topic: topic, Data: payload, At: time.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns {
		if !c.subscribed(topic) {
			continue
		}
		if err := c.writeJSON(env); err != nil {
			h.logger.Warn("ws publish failed, dropping connection", "topic", topic, "error", err)
			go h.Remove(c)
		}
	}
}

// Heartbeat pings all connections periodically and reaps ones that stopped
// answering. Blocks until ctx is cancelled; intended to be called with `go`.
func (h *Hub) Heartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}

		h.mu.RLock()
		for c := range h.conns {
			if c.idle() > 2*interval {
				go h.Remove(c)
				continue
			}
			c.writeMu.Lock()
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
			c.writeMu.Unlock()
		}
		h.mu.RUnlock()
	}
}
