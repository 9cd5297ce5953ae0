package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tripdiary/tripadmin/internal/handler"
)

// loginPeekBytes bounds how much of a login body is read to find the username
const loginPeekBytes = 4 << 10

// Limiter allows at most limit hits per key inside a sliding window.
// Idle keys are swept lazily, at most once per window.
type Limiter struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records a hit for key and reports whether it fits the budget
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(now)
	}

	cutoff := now.Add(-l.window)
	recent := slices.DeleteFunc(l.hits[key], func(t time.Time) bool {
		return !t.After(cutoff)
	})
	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false
	}
	l.hits[key] = append(recent, now)
	return true
}

// sweep drops keys whose newest hit has left the window. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.window)
	for key, hits := range l.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
	l.lastSweep = now
}

// KeyFunc picks the bucket a request is counted in
type KeyFunc func(r *http.Request) string

// RateLimit answers 429 once a key has spent the limiter's budget
func RateLimit(limiter *Limiter, key KeyFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if !limiter.Allow(k) {
				slog.Warn("rate limit exceeded", "key", k, "path", r.URL.Path)
				handler.WriteError(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}
			next(w, r)
		}
	}
}

// RateLimitLogin guards the login endpoint with two budgets over 15 minutes:
// 5 attempts per client and username, and 20 attempts per client overall.
// Guessing one account's password hits the first; spraying many usernames
// from one address hits the second.
func RateLimitLogin() func(http.HandlerFunc) http.HandlerFunc {
	perClient := RateLimit(NewLimiter(20, 15*time.Minute), ClientIP)
	perAccount := RateLimit(NewLimiter(5, 15*time.Minute), LoginAttempt)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return perClient(perAccount(next))
	}
}

// ClientIP is the first X-Forwarded-For hop, then X-Real-IP, then the peer address
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoginAttempt keys a login request by client and the username it names.
// The body is restored so the handler still reads it whole.
func LoginAttempt(r *http.Request) string {
	return ClientIP(r) + "|" + strings.ToLower(strings.TrimSpace(peekUsername(r)))
}

type replayBody struct {
	io.Reader
	io.Closer
}

func peekUsername(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	head, err := io.ReadAll(io.LimitReader(r.Body, loginPeekBytes))
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}
	if err != nil {
		return ""
	}

	var login struct {
		Username string `json:"username"`
	}
	// A body larger than the peek is cut mid-document and yields no username
	if json.Unmarshal(head, &login) != nil {
		return ""
	}
	return login.Username
}
