// Package store provides typed access to the TuskWatch database over the
// prepared statements registered in internal/db. Row types here are the
// canonical shapes shared by the pipeline, dispatcher, and API handlers.
package store

import "time"

// Device connectivity states.
const (
	DeviceOnline  = "online"
	DeviceOffline = "offline"
	DeviceUnknown = "unknown"
)

// Detection is one sensor-reported sighting. Append-only: created exactly
// once per ingested event and never mutated.
type Detection struct {
	ID         int64     `json:"id"`
	DeviceID   string    `json:"device_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Confidence *float64  `json:"confidence,omitempty"`
	Battery    *float64  `json:"battery,omitempty"`
	DetectedAt time.Time `json:"detected_at"`
}

// Hotspot is an administrator-defined risk area. Read-only to the pipeline.
type Hotspot struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	RadiusM    float64 `json:"radius_m"`
	AlertLevel string  `json:"alert_level"`
}

// Subscriber is a user eligible for notification fan-out. Token fields are
// empty strings when the channel is not registered.
type Subscriber struct {
	ID            int64
	AlertRadiusKM float64
	FCMToken      string
	WebPushToken  string
}

// HasToken reports whether the subscriber holds at least one delivery token.
func (s Subscriber) HasToken() bool {
	return s.FCMToken != "" || s.WebPushToken != ""
}

// Notification is one persisted audit row. Fan-out writes one row per
// recipient, not one shared row.
type Notification struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}
