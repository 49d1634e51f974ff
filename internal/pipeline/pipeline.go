// Package pipeline orchestrates detection ingestion: validate, persist,
// update device health, broadcast live, fan out the general alert, then
// match alert zones and fan out proximity alerts per zone.
//
// Failure policy per step:
//   - validation / detection insert: fatal, the caller gets an error
//   - device health update: logged and swallowed
//   - zone matching: logged, treated as "no zones matched"
//   - any dispatch: non-fatal, reported in the result
//
// Everything after the detection insert is observability for the caller,
// never a request failure — a field sensor only needs to know its
// detection was accepted.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/hathi-labs/tuskwatch/internal/dispatch"
	"github.com/hathi-labs/tuskwatch/internal/geofence"
	"github.com/hathi-labs/tuskwatch/internal/push"
	"github.com/hathi-labs/tuskwatch/internal/store"
	"github.com/hathi-labs/tuskwatch/internal/ws"
)

// IncomingDetection is the raw sensor event before validation.
type IncomingDetection struct {
	DeviceID   string   `json:"device_id"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Confidence *float64 `json:"confidence,omitempty"`
	Battery    *float64 `json:"battery_percentage,omitempty"`
}

// ValidationError is a rejected input; no side effects have happened.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ZoneResult is the dispatch outcome for one matched zone.
type ZoneResult struct {
	Zone    geofence.ZoneMatch `json:"zone"`
	Summary dispatch.Summary   `json:"summary"`
}

// Result is returned to the ingesting caller: the stored detection plus
// the fan-out outcomes.
type Result struct {
	Detection store.Detection  `json:"detection"`
	General   dispatch.Summary `json:"general"`
	Zones     []ZoneResult     `json:"zones"`
}

// ProximityEvent is the live-broadcast payload for a zone match.
type ProximityEvent struct {
	Hotspot struct {
		ID             int64   `json:"id"`
		Name           string  `json:"name"`
		Type           string  `json:"type"`
		DistanceMeters float64 `json:"distanceMeters"`
		AlertLevel     string  `json:"alertLevel"`
	} `json:"hotspot"`
	Detection struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		DeviceID  string  `json:"deviceId"`
	} `json:"detection"`
}

// --------------------------------------------------------------------------
// Dependencies
// --------------------------------------------------------------------------

// Store is the slice of the data layer the pipeline writes and reads.
type Store interface {
	InsertDetection(ctx context.Context, deviceID string, lat, lon float64, confidence, battery *float64) (store.Detection, error)
	UpdateDeviceHealth(ctx context.Context, deviceID string, battery *float64) error
	GeneralSubscribers(ctx context.Context) ([]store.Subscriber, error)
	ZoneSubscribers(ctx context.Context, distanceMeters float64) ([]store.Subscriber, error)
}

// Matcher answers which active zones contain a point, nearest first.
type Matcher interface {
	Match(ctx context.Context, lat, lon float64) ([]geofence.ZoneMatch, error)
}

// Dispatcher fans a payload out to a recipient set across both channels.
type Dispatcher interface {
	Send(ctx context.Context, recipients []store.Subscriber, p push.Payload) dispatch.Summary
}

// Broadcaster publishes to all currently connected live clients.
type Broadcaster interface {
	Publish(topic string, payload any)
}

// Pipeline processes one detection per Ingest call. Independent events may
// be ingested concurrently; the store is the only shared state.
type Pipeline struct {
	store      Store
	matcher    Matcher
	dispatcher Dispatcher
	broadcast  Broadcaster
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a Pipeline. timeout bounds one whole Ingest call; expiry
// after the detection insert yields a partial result, not a rollback.
func New(st Store, m Matcher, d Dispatcher, b Broadcaster, timeout time.Duration, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:      st,
		matcher:    m,
		dispatcher: d,
		broadcast:  b,
		timeout:    timeout,
		logger:     logger,
	}
}

// --------------------------------------------------------------------------
// Ingest
// --------------------------------------------------------------------------

// Ingest runs the full pipeline for one detection. Re-ingesting the same
// device/coordinates is not deduplicated; every accepted call produces a
// new detection and a fresh fan-out.
func (p *Pipeline) Ingest(ctx context.Context, in IncomingDetection) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// 1. Persist. Failure here means the acceptance itself failed.
	det, err := p.store.InsertDetection(ctx, in.DeviceID, *in.Latitude, *in.Longitude, in.Confidence, in.Battery)
	if err != nil {
		return Result{}, fmt.Errorf("store detection: %w", err)
	}
	result := Result{Detection: det}

	// 2. Device health, best effort.
	if err := p.store.UpdateDeviceHealth(ctx, in.DeviceID, in.Battery); err != nil {
		p.logger.Warn("device health update failed", "device_id", in.DeviceID, "error", err)
	}

	// 3. Every connected client sees every accepted detection.
	p.broadcast.Publish(ws.TopicDetections, det)

	// 4. General fan-out to all enabled subscribers.
	if subs, err := p.store.GeneralSubscribers(ctx); err != nil {
		p.logger.Warn("resolve general subscribers failed", "error", err)
	} else {
		result.General = p.dispatcher.Send(ctx, subs, generalPayload(det))
	}

	// 5. Proximity fan-out per matched zone, nearest first. A store
	// failure during matching downgrades to "no zones matched" — the
	// general alert already went out.
	matches, err := p.matcher.Match(ctx, det.Latitude, det.Longitude)
	if err != nil {
		p.logger.Warn("zone match failed", "detection_id", det.ID, "error", err)
		matches = nil
	}

	for _, zone := range matches {
		result.Zones = append(result.Zones, p.dispatchZone(ctx, det, zone))
	}

	p.logger.Info("detection ingested",
		"detection_id", det.ID, "device_id", det.DeviceID, "zones", len(matches))
	return result, nil
}

// dispatchZone handles one matched zone in isolation: its resolver or
// provider failures never cancel other zones.
func (p *Pipeline) dispatchZone(ctx context.Context, det store.Detection, zone geofence.ZoneMatch) ZoneResult {
	zr := ZoneResult{Zone: zone}

	subs, err := p.store.ZoneSubscribers(ctx, zone.DistanceMeters)
	if err != nil {
		p.logger.Warn("resolve zone subscribers failed", "zone_id", zone.ZoneID, "error", err)
		return zr
	}

	zr.Summary = p.dispatcher.Send(ctx, subs, proximityPayload(det, zone))

	event := ProximityEvent{}
	event.Hotspot.ID = zone.HotspotID
	event.Hotspot.Name = zone.Name
	event.Hotspot.Type = zone.Type
	event.Hotspot.DistanceMeters = math.Round(zone.DistanceMeters)
	event.Hotspot.AlertLevel = zone.AlertLevel
	event.Detection.Latitude = det.Latitude
	event.Detection.Longitude = det.Longitude
	event.Detection.DeviceID = det.DeviceID
	p.broadcast.Publish(ws.TopicProximity, event)

	return zr
}

// --------------------------------------------------------------------------
// Validation & payloads
// --------------------------------------------------------------------------

// validate enforces the ingestion preconditions. Coordinates only need to
// be finite numbers — no range bounds, deliberately permissive.
func validate(in IncomingDetection) error {
	if in.DeviceID == "" {
		return &ValidationError{Field: "device_id", Reason: "must not be empty"}
	}
	if in.Latitude == nil || !isFinite(*in.Latitude) {
		return &ValidationError{Field: "latitude", Reason: "must be a finite number"}
	}
	if in.Longitude == nil || !isFinite(*in.Longitude) {
		return &ValidationError{Field: "longitude", Reason: "must be a finite number"}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func generalPayload(det store.Detection) push.Payload {
	return push.Payload{
		Title: "Elephant detected",
		Body: fmt.Sprintf("Sensor %s reported an elephant at (%.4f, %.4f)",
			det.DeviceID, det.Latitude, det.Longitude),
		Data: detectionData(det, nil),
	}
}

func proximityPayload(det store.Detection, zone geofence.ZoneMatch) push.Payload {
	return push.Payload{
		Title: fmt.Sprintf("Elephant near %s", zone.Name),
		Body: fmt.Sprintf("An elephant was detected about %.0f m from %s %s (%s alert)",
			math.Round(zone.DistanceMeters), zone.Type, zone.Name, zone.AlertLevel),
		Data: detectionData(det, &zone),
	}
}

// detectionData builds the stringified data map both providers require.
func detectionData(det store.Detection, zone *geofence.ZoneMatch) map[string]string {
	data := map[string]string{
		"detection_id": strconv.FormatInt(det.ID, 10),
		"device_id":    det.DeviceID,
		"latitude":     strconv.FormatFloat(det.Latitude, 'f', -1, 64),
		"longitude":    strconv.FormatFloat(det.Longitude, 'f', -1, 64),
	}
	if zone != nil {
		data["zone_id"] = strconv.FormatInt(zone.ZoneID, 10)
		data["distance_m"] = strconv.FormatFloat(math.Round(zone.DistanceMeters), 'f', 0, 64)
		data["alert_level"] = zone.AlertLevel
	}
	return data
}
