package push

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"firebase.google.com/go/v4/messaging"
)

func TestValidFCMToken(t *testing.T) {
	long := strings.Repeat("a", 150)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"realistic token", "dGhpcy1pcy1hbi1pbnN0YW5jZS1pZA:" + strings.Repeat("APA91b", 20), true},
		{"minimum length", strings.Repeat("x", 100), true},
		{"just under minimum", strings.Repeat("x", 99), false},
		{"empty", "", false},
		{"whitespace", long + " ", false},
		{"plus sign", long + "+", false},
		{"slash", long + "/", false},
		{"colon and dash allowed", "abc:def-" + long, true},
		{"underscore allowed", "abc_def" + long, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidFCMToken(tt.token); got != tt.want {
				t.Errorf("ValidFCMToken(%q...) = %v, want %v", tt.token[:min(len(tt.token), 12)], got, tt.want)
			}
		})
	}
}

func TestBatchTokens(t *testing.T) {
	tokens := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "t"
		}
		return out
	}

	tests := []struct {
		name      string
		count     int
		size      int
		wantSizes []int
	}{
		{"empty", 0, 500, nil},
		{"single partial batch", 3, 500, []int{3}},
		{"exact batch", 500, 500, []int{500}},
		{"one over", 501, 500, []int{500, 1}},
		{"multiple full", 1000, 500, []int{500, 500}},
		{"small size", 5, 2, []int{2, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := batchTokens(tokens(tt.count), tt.size)
			if len(batches) != len(tt.wantSizes) {
				t.Fatalf("got %d batches, want %d", len(batches), len(tt.wantSizes))
			}
			for i, b := range batches {
				if len(b) != tt.wantSizes[i] {
					t.Errorf("batch %d has %d tokens, want %d", i, len(b), tt.wantSizes[i])
				}
			}
		})
	}
}

// fcmSender builds a sender whose provider call is the given fake.
func fcmSender(multicast multicastFunc) *FCMSender {
	return &FCMSender{multicast: multicast, logger: slog.New(slog.DiscardHandler)}
}

func validTokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strings.Repeat("v", 120)
	}
	return out
}

func TestFCMSendMixedTokenAccounting(t *testing.T) {
	var gotBatches [][]string
	s := fcmSender(func(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
		gotBatches = append(gotBatches, msg.Tokens)
		return &messaging.BatchResponse{SuccessCount: len(msg.Tokens)}, nil
	})

	valid := validTokens(3)
	tokens := []string{valid[0], "too-short", valid[1], valid[2]}
	got := s.Send(context.Background(), tokens, Payload{Title: "t"})

	if got.Sent != 3 || got.Failed != 1 {
		t.Fatalf("got %+v, want {Sent:3 Failed:1}", got)
	}
	// The malformed token never reaches the provider.
	if len(gotBatches) != 1 || len(gotBatches[0]) != 3 {
		t.Fatalf("provider saw batches %v", gotBatches)
	}
}

func TestFCMSendAllTokensMalformed(t *testing.T) {
	s := fcmSender(func(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
		t.Fatal("provider must not be called")
		return nil, nil
	})

	got := s.Send(context.Background(), []string{"a", "b c"}, Payload{Title: "t"})
	if got.Sent != 0 || got.Failed != 2 {
		t.Fatalf("got %+v, want {Sent:0 Failed:2}", got)
	}
}

func TestFCMSendBatchFailureIsolated(t *testing.T) {
	// 501 valid tokens split into a batch of 500 and a batch of 1; the
	// first batch fails at transport, the second still goes out.
	var calls int
	s := fcmSender(func(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("service unavailable")
		}
		return &messaging.BatchResponse{SuccessCount: len(msg.Tokens)}, nil
	})

	got := s.Send(context.Background(), validTokens(501), Payload{Title: "t"})
	if got.Sent != 1 || got.Failed != 500 {
		t.Fatalf("got %+v, want {Sent:1 Failed:500}", got)
	}
	if calls != 2 {
		t.Fatalf("provider calls = %d, want 2", calls)
	}
}

func TestFCMSendPartialBatchResponse(t *testing.T) {
	s := fcmSender(func(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
		return &messaging.BatchResponse{SuccessCount: len(msg.Tokens) - 1, FailureCount: 1}, nil
	})

	got := s.Send(context.Background(), validTokens(4), Payload{Title: "t"})
	if got.Sent != 3 || got.Failed != 1 {
		t.Fatalf("got %+v, want {Sent:3 Failed:1}", got)
	}
}

func TestResultAdd(t *testing.T) {
	var r Result
	r.add(Result{Sent: 3, Failed: 1})
	r.add(Result{Sent: 0, Failed: 2})
	if r.Sent != 3 || r.Failed != 3 {
		t.Fatalf("got %+v, want {Sent:3 Failed:3}", r)
	}
}
