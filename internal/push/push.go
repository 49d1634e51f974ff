// Package push wraps the two delivery providers: Firebase Cloud Messaging
// for mobile tokens and the Web Push protocol (VAPID) for browser
// subscriptions. Both senders are independently optional — a nil sender
// means the channel is not configured and short-circuits to zero counts
// at the dispatcher.
package push

import "errors"

// Payload is the channel-agnostic notification content. Data values must
// already be stringified; both providers require string-typed custom
// fields.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// ErrInvalidToken marks a delivery token that fails the provider's format
// requirements. Counted as a failure without a network call.
var ErrInvalidToken = errors.New("push: invalid token format")

// Result is the per-channel outcome of one send call.
type Result struct {
	Sent   int
	Failed int
}

func (r *Result) add(other Result) {
	r.Sent += other.Sent
	r.Failed += other.Failed
}
