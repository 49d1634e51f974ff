package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

const (
	webpushTimeout = 10 * time.Second
	webpushTTL     = 300 // seconds the push service may hold the message
)

// WebPushSender delivers notifications to browser subscriptions via the
// Web Push protocol with VAPID authentication. Tokens are serialized
// subscription JSON (endpoint + p256dh/auth keys) as handed out by the
// browser's PushManager.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebPushSender creates a web push sender. Returns nil when either
// VAPID key is empty: the browser channel is not configured.
func NewWebPushSender(publicKey, privateKey, subscriber string, logger *slog.Logger) *WebPushSender {
	if publicKey == "" || privateKey == "" {
		return nil
	}
	return &WebPushSender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		httpClient: &http.Client{Timeout: webpushTimeout},
		logger:     logger,
	}
}

// Send delivers the payload to each subscription individually. A failed or
// unregistered subscription counts as one failure and never stops the
// remaining tokens. At-most-once: no retries.
func (s *WebPushSender) Send(ctx context.Context, tokens []string, p Payload) Result {
	var result Result

	body, err := json.Marshal(p)
	if err != nil {
		s.logger.Error("webpush payload marshal failed", "error", err)
		return Result{Failed: len(tokens)}
	}

	for _, token := range tokens {
		var sub webpush.Subscription
		if err := json.Unmarshal([]byte(token), &sub); err != nil || sub.Endpoint == "" {
			s.logger.Warn("webpush token rejected", "reason", ErrInvalidToken)
			result.Failed++
			continue
		}

		if s.sendOne(ctx, body, &sub) {
			result.Sent++
		} else {
			result.Failed++
		}
	}
	return result
}

func (s *WebPushSender) sendOne(ctx context.Context, body []byte, sub *webpush.Subscription) bool {
	ctx, cancel := context.WithTimeout(ctx, webpushTimeout)
	defer cancel()

	resp, err := webpush.SendNotificationWithContext(ctx, body, sub, &webpush.Options{
		HTTPClient:      s.httpClient,
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             webpushTTL,
	})
	if err != nil {
		s.logger.Warn("webpush send failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// Subscription expired or unsubscribed on the push service side.
		s.logger.Warn("webpush subscription gone", "status", resp.StatusCode)
		return false
	case resp.StatusCode >= 400:
		s.logger.Warn("webpush rejected", "status", resp.StatusCode)
		return false
	}
	return true
}
