package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
)

func TestNewWebPushSenderUnconfigured(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	if s := NewWebPushSender("", "priv", "mailto:ops@example.org", logger); s != nil {
		t.Fatal("empty public key must yield a nil sender")
	}
	if s := NewWebPushSender("pub", "", "mailto:ops@example.org", logger); s != nil {
		t.Fatal("empty private key must yield a nil sender")
	}
}

// testSubscription builds a subscription JSON token with real P-256 keys
// pointed at the given endpoint, so payload encryption succeeds and the
// request actually reaches the test server.
func testSubscription(t *testing.T, endpoint string) string {
	t.Helper()

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	auth := make([]byte, 16)
	if _, err := rand.Read(auth); err != nil {
		t.Fatal(err)
	}

	token, err := json.Marshal(webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(token)
}

func newTestSender(t *testing.T) *WebPushSender {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		t.Fatal(err)
	}
	s := NewWebPushSender(pub, priv, "mailto:ops@example.org", slog.New(slog.DiscardHandler))
	if s == nil {
		t.Fatal("sender unexpectedly nil")
	}
	return s
}

func TestWebPushSendStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Result
	}{
		{"created", http.StatusCreated, Result{Sent: 1}},
		{"gone means unsubscribed", http.StatusGone, Result{Failed: 1}},
		{"not found means expired", http.StatusNotFound, Result{Failed: 1}},
		{"payload too large", http.StatusRequestEntityTooLarge, Result{Failed: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			s := newTestSender(t)
			got := s.Send(context.Background(), []string{testSubscription(t, srv.URL)}, Payload{
				Title: "Elephant detected",
				Body:  "Sensor cam-1 reported an elephant",
			})
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWebPushSendRejectsMalformedTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := newTestSender(t)
	tokens := []string{
		"not json at all",
		`{"keys":{"p256dh":"x","auth":"y"}}`, // no endpoint
		testSubscription(t, srv.URL),
	}
	got := s.Send(context.Background(), tokens, Payload{Title: "t", Body: "b"})

	if got.Sent != 1 || got.Failed != 2 {
		t.Fatalf("got %+v, want {Sent:1 Failed:2}", got)
	}
}

func TestWebPushSendContinuesPastFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := newTestSender(t)
	tokens := []string{
		testSubscription(t, srv.URL),
		testSubscription(t, srv.URL),
		testSubscription(t, srv.URL),
	}
	got := s.Send(context.Background(), tokens, Payload{Title: "t", Body: "b"})

	if got.Sent != 2 || got.Failed != 1 {
		t.Fatalf("got %+v, want {Sent:2 Failed:1}", got)
	}
	if calls != 3 {
		t.Fatalf("server saw %d requests, want 3", calls)
	}
}

func TestWebPushRequestShape(t *testing.T) {
	var gotTTL, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTTL = r.Header.Get("TTL")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := newTestSender(t)
	s.Send(context.Background(), []string{testSubscription(t, srv.URL)}, Payload{Title: "t", Body: "b"})

	if gotTTL != fmt.Sprint(webpushTTL) {
		t.Errorf("TTL header = %q, want %d", gotTTL, webpushTTL)
	}
	if gotAuth == "" {
		t.Error("request must carry VAPID authorization")
	}
}
