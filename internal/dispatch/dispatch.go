// Package dispatch fans one notification payload out to a recipient set
// across the mobile (FCM) and browser (Web Push) channels.
//
// Recipients are partitioned by which tokens they hold — a subscriber with
// both tokens is delivered on both channels. The two channel sends run
// concurrently and are isolated: total failure of one provider never
// suppresses the other's deliveries. One audit notification row is written
// per recipient regardless of provider outcome; the in-app record is the
// fallback channel when push delivery fails.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hathi-labs/tuskwatch/internal/push"
	"github.com/hathi-labs/tuskwatch/internal/store"
)

// ChannelResult is the per-channel delivery outcome.
type ChannelResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Summary is the aggregate outcome of one Send call.
type Summary struct {
	Web    ChannelResult `json:"web"`
	Mobile ChannelResult `json:"mobile"`
}

// MobileSender delivers to FCM registration tokens.
type MobileSender interface {
	Send(ctx context.Context, tokens []string, p push.Payload) push.Result
}

// WebSender delivers to Web Push subscription tokens.
type WebSender interface {
	Send(ctx context.Context, tokens []string, p push.Payload) push.Result
}

// AuditStore persists the per-recipient notification record.
type AuditStore interface {
	InsertNotification(ctx context.Context, userID int64, title, body string, data map[string]string) error
}

// Dispatcher pushes notifications to both providers. Either sender may be
// nil, in which case that channel short-circuits to zero counts.
type Dispatcher struct {
	mobile MobileSender
	web    WebSender
	audit  AuditStore
	logger *slog.Logger
}

// New creates a Dispatcher. Pass nil senders for unconfigured channels.
func New(mobile MobileSender, web WebSender, audit AuditStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{mobile: mobile, web: web, audit: audit, logger: logger}
}

// Send partitions recipients by channel, writes one audit row per
// recipient, and pushes to both providers concurrently. Zero recipients
// returns a zero summary with no provider calls and no rows written.
func (d *Dispatcher) Send(ctx context.Context, recipients []store.Subscriber, p push.Payload) Summary {
	if len(recipients) == 0 {
		return Summary{}
	}

	var mobileTokens, webTokens []string
	for _, r := range recipients {
		if r.FCMToken != "" {
			mobileTokens = append(mobileTokens, r.FCMToken)
		}
		if r.WebPushToken != "" {
			webTokens = append(webTokens, r.WebPushToken)
		}
	}

	// Audit first: the notification "happened" even if no push lands.
	for _, r := range recipients {
		if err := d.audit.InsertNotification(ctx, r.ID, p.Title, p.Body, p.Data); err != nil {
			d.logger.Warn("notification audit insert failed", "user_id", r.ID, "error", err)
		}
	}

	var (
		wg      sync.WaitGroup
		summary Summary
	)

	if d.mobile != nil && len(mobileTokens) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := d.mobile.Send(ctx, mobileTokens, p)
			summary.Mobile = ChannelResult{Sent: res.Sent, Failed: res.Failed}
		}()
	}
	if d.web != nil && len(webTokens) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := d.web.Send(ctx, webTokens, p)
			summary.Web = ChannelResult{Sent: res.Sent, Failed: res.Failed}
		}()
	}
	wg.Wait()

	d.logger.Info("dispatch complete",
		"recipients", len(recipients),
		"mobile_sent", summary.Mobile.Sent, "mobile_failed", summary.Mobile.Failed,
		"web_sent", summary.Web.Sent, "web_failed", summary.Web.Failed)
	return summary
}
