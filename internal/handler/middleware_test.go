package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// --- SecurityHeaders ---

func TestSecurityHeaders_SetsAllHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rec, req)

	headers := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"Referrer-Policy":              "no-referrer",
		"X-XSS-Protection":             "0",
		"Cross-Origin-Resource-Policy": "same-origin",
	}
	for name, want := range headers {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s: want %q, got %q", name, want, got)
		}
	}
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "frame-ancestors 'none'") {
		t.Errorf("CSP missing frame-ancestors: %q", csp)
	}
	if hsts := rec.Header().Get("Strict-Transport-Security"); !strings.Contains(hsts, "max-age=") {
		t.Errorf("HSTS missing max-age: %q", hsts)
	}
}

func TestSecurityHeaders_PassesThrough(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	SecurityHeaders(inner).ServeHTTP(rec, req)

	if !called {
		t.Error("inner handler was not called")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rec.Code)
	}
}

// --- Recover ---

func TestRecover_PanicBecomes500(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	for _, dev := range []bool{false, true} {
		req := httptest.NewRequest("GET", "/", nil)
		rec := httptest.NewRecorder()
		Recover(ErrorDetail{Development: dev})(inner).ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		var body map[string]any
		_ = json.NewDecoder(rec.Body).Decode(&body)
		if body["message"] != "Internal Server Error" {
			t.Errorf("unexpected message %v", body["message"])
		}
		if dev && body["error"] != "boom" {
			t.Errorf("expected panic detail in development, got %v", body["error"])
		}
		if !dev && body["error"] == "boom" {
			t.Error("panic detail leaked in production")
		}
	}
}

// --- RateLimiter ---

func hit(h http.Handler, remoteAddr, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/contact", nil)
	req.RemoteAddr = remoteAddr
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newTestLimiter(t *testing.T, max int, trusted int) (*RateLimiter, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	t.Cleanup(store.Close)
	return NewRateLimiter(max, 15*time.Minute, store, trusted), store
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 10, 0)
	handler := rl.Middleware(okHandler())

	for i := 0; i < 10; i++ {
		rec := hit(handler, "192.168.1.1:12345", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 5, 0)
	handler := rl.Middleware(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = hit(handler, "192.168.1.1:12345", "")
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on 6th request, got %d", last.Code)
	}
	var body map[string]any
	_ = json.NewDecoder(last.Body).Decode(&body)
	if body["success"] != false || body["message"] != "Too many requests, please try again later." {
		t.Errorf("unexpected body %v", body)
	}
	if ra := last.Header().Get("Retry-After"); ra == "" {
		t.Error("expected Retry-After header on 429 response")
	}
	if rem := last.Header().Get("RateLimit-Remaining"); rem != "0" {
		t.Errorf("expected RateLimit-Remaining=0, got %q", rem)
	}
}

func TestRateLimiter_Headers(t *testing.T) {
	rl, _ := newTestLimiter(t, 3, 0)
	rec := hit(rl.Middleware(okHandler()), "10.0.0.1:1", "")

	if got := rec.Header().Get("RateLimit-Limit"); got != "3" {
		t.Errorf("expected RateLimit-Limit=3, got %q", got)
	}
	if got := rec.Header().Get("RateLimit-Remaining"); got != "2" {
		t.Errorf("expected RateLimit-Remaining=2, got %q", got)
	}
	if got := rec.Header().Get("RateLimit-Reset"); got == "" {
		t.Error("expected RateLimit-Reset header")
	}
}

func TestRateLimiter_DifferentIPsAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, 0)
	handler := rl.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		hit(handler, "10.0.0.1:1234", "")
	}
	if rec := hit(handler, "10.0.0.2:1234", ""); rec.Code != http.StatusOK {
		t.Errorf("different IP should not be rate limited, got %d", rec.Code)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl, store := newTestLimiter(t, 1, 0)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	handler := rl.Middleware(okHandler())

	hit(handler, "10.0.0.1:1", "")
	if rec := hit(handler, "10.0.0.1:1", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside window, got %d", rec.Code)
	}

	now = now.Add(15 * time.Minute)
	if rec := hit(handler, "10.0.0.1:1", ""); rec.Code != http.StatusOK {
		t.Errorf("expected a fresh window after 15 minutes, got %d", rec.Code)
	}
}

func TestRateLimiter_XForwardedFor_SpoofedLeftmostIgnored(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 1)
	handler := rl.Middleware(okHandler())

	if rec := hit(handler, "10.0.0.99:1234", "203.0.113.50"); rec.Code != http.StatusOK {
		t.Fatalf("first request should succeed, got %d", rec.Code)
	}
	// Prepending a spoofed address does not change the rightmost trusted entry.
	if rec := hit(handler, "10.0.0.99:1234", "9.9.9.9, 203.0.113.50"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 for same real client IP, got %d", rec.Code)
	}
}

func TestRateLimiter_XForwardedFor_IgnoredWithoutTrustedProxy(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 0)
	handler := rl.Middleware(okHandler())

	hit(handler, "10.0.0.99:1234", "203.0.113.50")
	if rec := hit(handler, "10.0.0.99:1234", "203.0.113.51"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("XFF must be ignored when no proxy is trusted, got %d", rec.Code)
	}
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int64, time.Time, error) {
	return 0, time.Time{}, errors.New("redis: connection refused")
}

func TestRateLimiter_StoreErrorFailsOpen(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, failingStore{}, 0)
	handler := rl.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		if rec := hit(handler, "10.0.0.1:1", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 when store is down, got %d", i+1, rec.Code)
		}
	}
}

func TestMemoryStore_SweepRemovesExpired(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, _, _ = store.Hit(context.Background(), "a", time.Minute)
	_, _, _ = store.Hit(context.Background(), "b", time.Hour)

	now = now.Add(2 * time.Minute)
	store.sweep()

	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.windows["a"]; ok {
		t.Error("expired window should be removed")
	}
	if _, ok := store.windows["b"]; !ok {
		t.Error("live window should be kept")
	}
}

// --- RequestLogger ---

func TestRequestLogger_SetsRequestID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	RequestLogger(okHandler()).ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID to be generated")
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	RequestLogger(okHandler()).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected caller's request id, got %q", got)
	}
}
