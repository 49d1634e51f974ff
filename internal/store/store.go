package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store executes the prepared statements registered in internal/db.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over an initialized pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --------------------------------------------------------------------------
// Detections & devices
// --------------------------------------------------------------------------

// InsertDetection persists one detection and returns the stored row.
func (s *Store) InsertDetection(ctx context.Context, deviceID string, lat, lon float64, confidence, battery *float64) (Detection, error) {
	d := Detection{
		DeviceID:   deviceID,
		Latitude:   lat,
		Longitude:  lon,
		Confidence: confidence,
		Battery:    battery,
	}
	err := s.pool.QueryRow(ctx, "insert_detection", deviceID, lat, lon, confidence, battery).
		Scan(&d.ID, &d.DetectedAt)
	if err != nil {
		return Detection{}, fmt.Errorf("insert detection: %w", err)
	}
	return d, nil
}

// UpdateDeviceHealth marks the device online with a fresh last_seen and the
// reported battery level. A nil battery keeps the previous reading.
func (s *Store) UpdateDeviceHealth(ctx context.Context, deviceID string, battery *float64) error {
	if _, err := s.pool.Exec(ctx, "upsert_device_health", deviceID, battery); err != nil {
		return fmt.Errorf("update device health: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Geofencing
// --------------------------------------------------------------------------

// ZoneRow is one matched alert zone with the distance from the query point
// to the parent hotspot, in meters.
type ZoneRow struct {
	ZoneID         int64
	HotspotID      int64
	Name           string
	Type           string
	AlertLevel     string
	RadiusM        float64
	DistanceMeters float64
}

// MatchZones returns active zones whose buffered area covers the point,
// ordered by distance ascending then zone id. Containment and distance are
// evaluated by PostGIS on the geography type.
func (s *Store) MatchZones(ctx context.Context, lat, lon float64) ([]ZoneRow, error) {
	rows, err := s.pool.Query(ctx, "match_alert_zones", lat, lon)
	if err != nil {
		return nil, fmt.Errorf("match alert zones: %w", err)
	}
	defer rows.Close()

	var matches []ZoneRow
	for rows.Next() {
		var z ZoneRow
		if err := rows.Scan(&z.ZoneID, &z.HotspotID, &z.Name, &z.Type, &z.AlertLevel, &z.RadiusM, &z.DistanceMeters); err != nil {
			return nil, fmt.Errorf("scan zone match: %w", err)
		}
		matches = append(matches, z)
	}
	return matches, rows.Err()
}

// --------------------------------------------------------------------------
// Subscribers
// --------------------------------------------------------------------------

// GeneralSubscribers returns all enabled users holding at least one
// delivery token.
func (s *Store) GeneralSubscribers(ctx context.Context) ([]Subscriber, error) {
	return s.scanSubscribers(ctx, "general_subscribers")
}

// ZoneSubscribers returns enabled, token-holding users whose alert radius
// preference covers a zone matched at the given distance from the
// detection point.
func (s *Store) ZoneSubscribers(ctx context.Context, distanceMeters float64) ([]Subscriber, error) {
	return s.scanSubscribers(ctx, "zone_subscribers", distanceMeters)
}

func (s *Store) scanSubscribers(ctx context.Context, stmt string, args ...any) ([]Subscriber, error) {
	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stmt, err)
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		var sub Subscriber
		if err := rows.Scan(&sub.ID, &sub.AlertRadiusKM, &sub.FCMToken, &sub.WebPushToken); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// --------------------------------------------------------------------------
// Notifications
// --------------------------------------------------------------------------

// InsertNotification writes one audit row for a recipient. The data map is
// stored as JSONB.
func (s *Store) InsertNotification(ctx context.Context, userID int64, title, body string, data map[string]string) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}
	var id int64
	if err := s.pool.QueryRow(ctx, "insert_notification", userID, title, body, payload).Scan(&id); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]Notification, error) {
	rows, err := s.pool.Query(ctx, "list_notifications", userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		var (
			n   Notification
			raw []byte
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &raw, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &n.Data); err != nil {
				return nil, fmt.Errorf("decode notification data: %w", err)
			}
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkNotificationRead flips the read flag on one notification.
func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "mark_notification_read", id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %d not found", id)
	}
	return nil
}

// --------------------------------------------------------------------------
// Hotspot read model
// --------------------------------------------------------------------------

// ActiveHotspots returns all active hotspots with their zone geometry
// parameters, for map clients.
func (s *Store) ActiveHotspots(ctx context.Context) ([]Hotspot, error) {
	rows, err := s.pool.Query(ctx, "active_hotspots")
	if err != nil {
		return nil, fmt.Errorf("active hotspots: %w", err)
	}
	defer rows.Close()

	var hotspots []Hotspot
	for rows.Next() {
		var h Hotspot
		if err := rows.Scan(&h.ID, &h.Name, &h.Type, &h.Latitude, &h.Longitude, &h.RadiusM, &h.AlertLevel); err != nil {
			return nil, fmt.Errorf("scan hotspot: %w", err)
		}
		hotspots = append(hotspots, h)
	}
	return hotspots, rows.Err()
}

// --------------------------------------------------------------------------
// Maintenance
// --------------------------------------------------------------------------

// SweepStaleDevices marks devices offline when last_seen is older than the
// threshold. Returns the number of devices transitioned.
func (s *Store) SweepStaleDevices(ctx context.Context, olderThanSeconds float64) (int64, error) {
	tag, err := s.pool.Exec(ctx, "sweep_stale_devices", olderThanSeconds)
	if err != nil {
		return 0, fmt.Errorf("sweep stale devices: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeReadNotifications deletes read notifications older than the
// retention window. Returns the number of rows removed.
func (s *Store) PurgeReadNotifications(ctx context.Context, olderThanSeconds float64) (int64, error) {
	tag, err := s.pool.Exec(ctx, "purge_read_notifications", olderThanSeconds)
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
