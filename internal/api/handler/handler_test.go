package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hathi-labs/tuskwatch/internal/pipeline"
	"github.com/hathi-labs/tuskwatch/internal/store"
)

type fakeIngester struct {
	result pipeline.Result
	err    error
	got    *pipeline.IncomingDetection
}

func (f *fakeIngester) Ingest(ctx context.Context, in pipeline.IncomingDetection) (pipeline.Result, error) {
	f.got = &in
	return f.result, f.err
}

type fakeReadStore struct {
	notifications []store.Notification
	listErr       error
	markErr       error
	hotspots      []store.Hotspot

	gotUserID int64
	gotLimit  int
	gotOffset int
}

func (f *fakeReadStore) ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]store.Notification, error) {
	f.gotUserID, f.gotLimit, f.gotOffset = userID, limit, offset
	return f.notifications, f.listErr
}

func (f *fakeReadStore) MarkNotificationRead(ctx context.Context, id int64) error {
	return f.markErr
}

func (f *fakeReadStore) ActiveHotspots(ctx context.Context) ([]store.Hotspot, error) {
	return f.hotspots, nil
}

type fakeHealth struct{ err error }

func (f *fakeHealth) HealthCheck(ctx context.Context) error { return f.err }

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health/db", h.HealthCheckDB)
	r.Post("/api/v1/detections", h.CreateDetection)
	r.Get("/api/v1/notifications/{userID}", h.ListNotifications)
	r.Post("/api/v1/notifications/{id}/read", h.MarkNotificationRead)
	r.Get("/api/v1/hotspots", h.ListHotspots)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateDetection(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		ingestErr  error
		wantStatus int
	}{
		{
			name:       "accepted",
			body:       `{"device_id":"cam-1","latitude":21.1458,"longitude":79.0882,"confidence":0.93}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"device_id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation rejected",
			body:       `{"latitude":21.1,"longitude":79.1}`,
			ingestErr:  &pipeline.ValidationError{Field: "device_id", Reason: "must not be empty"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "storage unavailable",
			body:       `{"device_id":"cam-1","latitude":21.1,"longitude":79.1}`,
			ingestErr:  errors.New("pool exhausted"),
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := &fakeIngester{err: tt.ingestErr}
			h := New(ing, &fakeReadStore{}, &fakeHealth{})
			rec := doRequest(t, newTestRouter(h), http.MethodPost, "/api/v1/detections", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}
}

func TestCreateDetectionPassesFieldsThrough(t *testing.T) {
	ing := &fakeIngester{}
	h := New(ing, &fakeReadStore{}, &fakeHealth{})
	doRequest(t, newTestRouter(h), http.MethodPost, "/api/v1/detections",
		`{"device_id":"cam-9","latitude":21.5,"longitude":79.5,"battery_percentage":84.5}`)

	if ing.got == nil {
		t.Fatal("pipeline never invoked")
	}
	if ing.got.DeviceID != "cam-9" || *ing.got.Latitude != 21.5 || *ing.got.Battery != 84.5 {
		t.Fatalf("pipeline saw %+v", ing.got)
	}
	if ing.got.Confidence != nil {
		t.Fatal("absent confidence must stay nil")
	}
}

func TestListNotifications(t *testing.T) {
	st := &fakeReadStore{notifications: []store.Notification{{ID: 1, UserID: 42, Title: "Elephant detected"}}}
	h := New(&fakeIngester{}, st, &fakeHealth{})
	router := newTestRouter(h)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/notifications/42?limit=10&offset=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if st.gotUserID != 42 || st.gotLimit != 10 || st.gotOffset != 5 {
		t.Fatalf("store saw user=%d limit=%d offset=%d", st.gotUserID, st.gotLimit, st.gotOffset)
	}

	var list []store.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "Elephant detected" {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestListNotificationsBounds(t *testing.T) {
	st := &fakeReadStore{}
	h := New(&fakeIngester{}, st, &fakeHealth{})
	router := newTestRouter(h)

	// Oversized limit falls back to the default page size.
	doRequest(t, router, http.MethodGet, "/api/v1/notifications/1?limit=9999", "")
	if st.gotLimit != defaultPageSize {
		t.Fatalf("limit = %d, want clamped to %d", st.gotLimit, defaultPageSize)
	}

	// Negative offset clamps to zero.
	doRequest(t, router, http.MethodGet, "/api/v1/notifications/1?offset=-3", "")
	if st.gotOffset != 0 {
		t.Fatalf("offset = %d, want 0", st.gotOffset)
	}
}

func TestListNotificationsEmptyIsArray(t *testing.T) {
	h := New(&fakeIngester{}, &fakeReadStore{}, &fakeHealth{})
	rec := doRequest(t, newTestRouter(h), http.MethodGet, "/api/v1/notifications/1", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("empty list must serialize as [], got %s", body)
	}
}

func TestListNotificationsBadUserID(t *testing.T) {
	h := New(&fakeIngester{}, &fakeReadStore{}, &fakeHealth{})
	rec := doRequest(t, newTestRouter(h), http.MethodGet, "/api/v1/notifications/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	h := New(&fakeIngester{}, &fakeReadStore{}, &fakeHealth{})
	rec := doRequest(t, newTestRouter(h), http.MethodPost, "/api/v1/notifications/7/read", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	missing := New(&fakeIngester{}, &fakeReadStore{markErr: errors.New("no rows")}, &fakeHealth{})
	rec = doRequest(t, newTestRouter(missing), http.MethodPost, "/api/v1/notifications/7/read", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealthCheckDB(t *testing.T) {
	healthy := New(&fakeIngester{}, &fakeReadStore{}, &fakeHealth{})
	if rec := doRequest(t, newTestRouter(healthy), http.MethodGet, "/health/db", ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	down := New(&fakeIngester{}, &fakeReadStore{}, &fakeHealth{err: errors.New("dial refused")})
	if rec := doRequest(t, newTestRouter(down), http.MethodGet, "/health/db", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
