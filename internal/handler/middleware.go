package handler

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"
)

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-XSS-Protection", "0")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// Recover turns a panic in a handler into a 500 JSON response.
func Recover(detail ErrorDetail) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic in handler", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				var errDetail any = struct{}{}
				if detail.Development {
					errDetail = toString(rec)
				}
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"message": "Internal Server Error",
					"error":   errDetail,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case error:
		return x.Error()
	case string:
		return x
	default:
		return "panic"
	}
}

// RateLimiter caps requests per client address in fixed windows.
type RateLimiter struct {
	max               int64
	window            time.Duration
	store             WindowStore
	trustedProxyCount int
}

// NewRateLimiter creates a limiter allowing max requests per window for each
// client address. trustedProxyCount is the number of reverse proxies that
// append to X-Forwarded-For; zero ignores the header.
func NewRateLimiter(max int, window time.Duration, store WindowStore, trustedProxyCount int) *RateLimiter {
	return &RateLimiter{
		max:               int64(max),
		window:            window,
		store:             store,
		trustedProxyCount: trustedProxyCount,
	}
}

// Middleware returns an http.Handler that enforces rate limits on every route.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.clientIP(r)
		count, resetAt, err := rl.store.Hit(r.Context(), ip, rl.window)
		if err != nil {
			// Fail open when the counter store is unreachable.
			slog.Warn("rate limit store unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.max - count
		if remaining < 0 {
			remaining = 0
		}
		resetIn := secondsUntil(resetAt)
		h := w.Header()
		h.Set("RateLimit-Limit", strconv.FormatInt(rl.max, 10))
		h.Set("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		h.Set("RateLimit-Reset", strconv.Itoa(resetIn))

		if count > rl.max {
			h.Set("Retry-After", strconv.Itoa(resetIn))
			writeJSON(w, http.StatusTooManyRequests, apiResponse{
				Success: false,
				Message: "Too many requests, please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func secondsUntil(t time.Time) int {
	secs := int(time.Until(t).Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return secs
}

// clientIP extracts the real client IP, reading from the rightmost trusted
// proxy position in X-Forwarded-For to prevent spoofing.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && rl.trustedProxyCount > 0 {
		parts := strings.Split(xff, ",")
		idx := len(parts) - rl.trustedProxyCount
		if idx >= 0 && idx < len(parts) {
			return strings.TrimSpace(parts[idx])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
