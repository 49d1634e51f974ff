package geofence

import (
	"context"
	"errors"
	"testing"

	"github.com/hathi-labs/tuskwatch/internal/store"
)

type fakeZoneStore struct {
	rows []store.ZoneRow
	err  error
}

func (f *fakeZoneStore) MatchZones(ctx context.Context, lat, lon float64) ([]store.ZoneRow, error) {
	return f.rows, f.err
}

func TestMatchOrdering(t *testing.T) {
	// Deliberately unordered input.
	zones := &fakeZoneStore{rows: []store.ZoneRow{
		{ZoneID: 5, HotspotID: 50, Name: "Far", DistanceMeters: 900},
		{ZoneID: 3, HotspotID: 30, Name: "Near", DistanceMeters: 120},
		{ZoneID: 1, HotspotID: 10, Name: "Tied high id first", DistanceMeters: 400},
		{ZoneID: 2, HotspotID: 20, Name: "Tied", DistanceMeters: 400},
	}}
	m := NewMatcher(zones)

	matches, err := m.Match(context.Background(), 21.1, 79.1)
	if err != nil {
		t.Fatal(err)
	}

	wantIDs := []int64{3, 1, 2, 5}
	if len(matches) != len(wantIDs) {
		t.Fatalf("got %d matches, want %d", len(matches), len(wantIDs))
	}
	for i, want := range wantIDs {
		if matches[i].ZoneID != want {
			t.Errorf("matches[%d].ZoneID = %d, want %d", i, matches[i].ZoneID, want)
		}
	}
}

func TestMatchDeterministic(t *testing.T) {
	zones := &fakeZoneStore{rows: []store.ZoneRow{
		{ZoneID: 2, DistanceMeters: 100},
		{ZoneID: 1, DistanceMeters: 100},
	}}
	m := NewMatcher(zones)

	first, err := m.Match(context.Background(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := m.Match(context.Background(), 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		for j := range first {
			if again[j].ZoneID != first[j].ZoneID {
				t.Fatal("equal-distance ties must order the same way every call")
			}
		}
	}
}

func TestMatchEmpty(t *testing.T) {
	m := NewMatcher(&fakeZoneStore{})
	matches, err := m.Match(context.Background(), -45.0, 170.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches, want none", len(matches))
	}
}

func TestMatchStoreError(t *testing.T) {
	zones := &fakeZoneStore{err: errors.New("connection reset")}
	m := NewMatcher(zones)
	if _, err := m.Match(context.Background(), 21.1, 79.1); err == nil {
		t.Fatal("store error must propagate")
	}
}
