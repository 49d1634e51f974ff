package push

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const (
	// FCM rejects multicast requests above 500 tokens.
	fcmMulticastLimit = 500
	fcmSendTimeout    = 10 * time.Second
	fcmMinTokenLen    = 100
)

// Registration tokens are base64url-ish with an instance-id prefix
// separated by a colon.
var fcmTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_:\-]+$`)

// ValidFCMToken reports whether a token passes FCM's format requirements.
// Checked before batching so one malformed token never fails its batch.
func ValidFCMToken(token string) bool {
	return len(token) >= fcmMinTokenLen && fcmTokenPattern.MatchString(token)
}

// multicastFunc is the provider call one batch goes through; the real
// client's SendEachForMulticast in production.
type multicastFunc func(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)

// FCMSender delivers notifications to mobile devices via Firebase Cloud
// Messaging.
type FCMSender struct {
	multicast multicastFunc
	logger    *slog.Logger
}

// NewFCMSender creates an FCM sender from a service account credentials
// file. Returns (nil, nil) when credentialsFile is empty: the mobile
// channel is simply not configured.
func NewFCMSender(ctx context.Context, credentialsFile string, logger *slog.Logger) (*FCMSender, error) {
	if credentialsFile == "" {
		return nil, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &FCMSender{multicast: client.SendEachForMulticast, logger: logger}, nil
}

// Send delivers the payload to each token, batching into multicast
// requests. Malformed tokens fail without a network call; a batch-level
// transport failure fails every token in that batch but later batches are
// still attempted. At-most-once: no retries.
func (s *FCMSender) Send(ctx context.Context, tokens []string, p Payload) Result {
	var result Result

	valid := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if ValidFCMToken(t) {
			valid = append(valid, t)
		} else {
			s.logger.Warn("fcm token rejected", "reason", ErrInvalidToken)
			result.Failed++
		}
	}

	for _, batch := range batchTokens(valid, fcmMulticastLimit) {
		result.add(s.sendBatch(ctx, batch, p))
	}
	return result
}

func (s *FCMSender) sendBatch(ctx context.Context, batch []string, p Payload) Result {
	ctx, cancel := context.WithTimeout(ctx, fcmSendTimeout)
	defer cancel()

	resp, err := s.multicast(ctx, &messaging.MulticastMessage{
		Tokens: batch,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: p.Data,
	})
	if err != nil {
		s.logger.Warn("fcm multicast failed", "tokens", len(batch), "error", err)
		return Result{Failed: len(batch)}
	}

	for _, r := range resp.Responses {
		if r.Error != nil && messaging.IsUnregistered(r.Error) {
			s.logger.Warn("fcm token unregistered", "error", r.Error)
		}
	}
	return Result{Sent: resp.SuccessCount, Failed: resp.FailureCount}
}

// batchTokens splits tokens into provider-sized chunks.
func batchTokens(tokens []string, size int) [][]string {
	var batches [][]string
	for len(tokens) > 0 {
		n := min(size, len(tokens))
		batches = append(batches, tokens[:n])
		tokens = tokens[n:]
	}
	return batches
}
