package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const readDeadline = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect cross-origin from the map frontend;
		// auth is out of scope for the broadcast channel.
		return true
	},
}

// Handler upgrades HTTP requests to websocket connections registered on
// the hub.
type Handler struct {
	hub *Hub
}

// NewHandler creates a websocket upgrade handler.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Serve upgrades the request and keeps the connection registered until the
// client disconnects. Topics come from the comma-separated ?topics= query
// parameter; default is detections+proximity.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	topics := parseTopics(r.URL.Query().Get("topics"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return
	}

	c := h.hub.Add(conn, topics)

	// Reader loop: consume pongs and client frames until the peer leaves.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		c.touch()
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.hub.Remove(c)
}

func parseTopics(raw string) []string {
	if raw == "" {
		return []string{TopicDetections, TopicProximity}
	}
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		switch strings.TrimSpace(t) {
		case TopicDetections, TopicProximity, TopicHotspots:
			topics = append(topics, strings.TrimSpace(t))
		}
	}
	if len(topics) == 0 {
		return []string{TopicDetections, TopicProximity}
	}
	return topics
}
