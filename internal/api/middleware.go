package api

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hathi-labs/tuskwatch/internal/api/respond"
)

// TimingMiddleware adds an X-Process-Time header with the request duration.
func TimingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("X-Process-Time", "")
		rec := &timingRecorder{ResponseWriter: w, start: start}
		next.ServeHTTP(rec, r)
	})
}

type timingRecorder struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
}

func (t *timingRecorder) WriteHeader(status int) {
	if !t.wroteHeader {
		t.Header().Set("X-Process-Time", fmt.Sprintf("%.4f", time.Since(t.start).Seconds()))
		t.wroteHeader = true
	}
	t.ResponseWriter.WriteHeader(status)
}

func (t *timingRecorder) Write(b []byte) (int, error) {
	if !t.wroteHeader {
		t.WriteHeader(http.StatusOK)
	}
	return t.ResponseWriter.Write(b)
}

// RateLimitMiddleware applies a per-IP token bucket. Sensors and map
// clients share the limit; burst equals the per-window request count.
func RateLimitMiddleware(requests int, window time.Duration) func(http.Handler) http.Handler {
	limiters := &ipLimiters{
		limiters: make(map[string]*ipLimiter),
		rate:     rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
	}
	go limiters.janitor(10 * time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiters.get(ip).Allow() {
				respond.WriteError(w, http.StatusTooManyRequests,
					"rate_limited", "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rate     rate.Limit
	burst    int
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// janitor drops limiters for IPs idle longer than maxIdle.
func (l *ipLimiters) janitor(maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		for ip, entry := range l.limiters {
			if time.Since(entry.lastSeen) > maxIdle {
				delete(l.limiters, ip)
			}
		}
		l.mu.Unlock()
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
