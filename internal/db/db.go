// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hathi-labs/tuskwatch/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the ingestion pipeline
// and API layers use. Prepared statements eliminate parse overhead on every
// request; the spatial ones keep containment and distance math inside
// PostGIS where it is evaluated on the ellipsoid.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Ingestion: detections are append-only
		"insert_detection": `
			INSERT INTO detections (device_id, latitude, longitude, confidence, battery, detected_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING id, detected_at`,

		// Ingestion: best-effort device health update
		"upsert_device_health": `
			INSERT INTO devices (id, last_seen, battery, status)
			VALUES ($1, NOW(), $2, 'online')
			ON CONFLICT (id) DO UPDATE
			SET last_seen = NOW(),
			    battery   = COALESCE(EXCLUDED.battery, devices.battery),
			    status    = 'online'`,

		// Geofencing: zones whose buffered area covers the detection point,
		// parent hotspot active, nearest first. $1=lat, $2=lon.
		"match_alert_zones": `
			SELECT az.id, h.id, h.name, h.type, az.alert_level, az.radius_m,
			       ST_Distance(h.location, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography) AS distance_m
			FROM alert_zones az
			JOIN hotspots h ON h.id = az.hotspot_id
			WHERE h.is_active
			  AND ST_Covers(az.area, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography)
			ORDER BY distance_m ASC, az.id ASC`,

		// Subscribers: everyone enabled with at least one delivery token
		"general_subscribers": `
			SELECT id, alert_radius_km, fcm_token, webpush_token
			FROM users
			WHERE enabled AND (fcm_token <> '' OR webpush_token <> '')
			ORDER BY id`,

		// Subscribers: radius preference covers the matched zone. $1=distance
		// from the detection point in meters.
		"zone_subscribers": `
			SELECT id, alert_radius_km, fcm_token, webpush_token
			FROM users
			WHERE enabled AND (fcm_token <> '' OR webpush_token <> '')
			  AND alert_radius_km * 1000 >= $1
			ORDER BY id`,

		// Notifications: audit trail
		"insert_notification": `
			INSERT INTO notifications (user_id, title, body, data)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
		"list_notifications": `
			SELECT id, user_id, title, body, data, is_read, created_at
			FROM notifications
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`,
		"mark_notification_read": `
			UPDATE notifications
			SET is_read = TRUE, read_at = NOW()
			WHERE id = $1`,

		// Read model for map clients
		"active_hotspots": `
			SELECT h.id, h.name, h.type,
			       ST_Y(h.location::geometry), ST_X(h.location::geometry),
			       az.radius_m, az.alert_level
			FROM hotspots h
			JOIN alert_zones az ON az.hotspot_id = h.id
			WHERE h.is_active
			ORDER BY h.id`,

		// Maintenance sweeps
		"sweep_stale_devices": `
			UPDATE devices
			SET status = 'offline'
			WHERE status = 'online'
			  AND last_seen < NOW() - make_interval(secs => $1)`,
		"purge_read_notifications": `
			DELETE FROM notifications
			WHERE is_read AND created_at < NOW() - make_interval(secs => $1)`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
