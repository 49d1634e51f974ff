// Package geofence matches detection coordinates against active hotspot
// alert zones. Containment and distance are computed by PostGIS on the
// geography type (ellipsoidal meters); this package owns the ordering
// guarantee and the store-facing contract.
package geofence

import (
	"context"
	"fmt"
	"sort"

	"github.com/hathi-labs/tuskwatch/internal/store"
)

// ZoneMatch is one alert zone whose buffered area contains the query
// point, with the distance from the point to the parent hotspot.
type ZoneMatch struct {
	ZoneID         int64   `json:"zone_id"`
	HotspotID      int64   `json:"hotspot_id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	AlertLevel     string  `json:"alert_level"`
	DistanceMeters float64 `json:"distance_meters"`
}

// ZoneStore is the slice of the store the matcher needs.
type ZoneStore interface {
	MatchZones(ctx context.Context, lat, lon float64) ([]store.ZoneRow, error)
}

// Matcher answers "which active zones contain this point, nearest first".
type Matcher struct {
	zones ZoneStore
}

// NewMatcher creates a Matcher over a zone store.
func NewMatcher(zones ZoneStore) *Matcher {
	return &Matcher{zones: zones}
}

// Match returns matched zones ordered by distance ascending, ties broken
// by zone id ascending. An empty result is not an error — no alert fires.
func (m *Matcher) Match(ctx context.Context, lat, lon float64) ([]ZoneMatch, error) {
	rows, err := m.zones.MatchZones(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("zone match: %w", err)
	}

	matches := make([]ZoneMatch, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, ZoneMatch{
			ZoneID:         r.ZoneID,
			HotspotID:      r.HotspotID,
			Name:           r.Name,
			Type:           r.Type,
			AlertLevel:     r.AlertLevel,
			DistanceMeters: r.DistanceMeters,
		})
	}

	// The query already orders; re-assert here so the contract does not
	// depend on the statement text.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].DistanceMeters != matches[j].DistanceMeters {
			return matches[i].DistanceMeters < matches[j].DistanceMeters
		}
		return matches[i].ZoneID < matches[j].ZoneID
	})
	return matches, nil
}
