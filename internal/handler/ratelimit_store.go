package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowStore counts hits per key in fixed windows.
type WindowStore interface {
	// Hit records one request for key and returns the number of requests in
	// the current window, including this one, and when the window ends.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}

// MemoryStore keeps counters in process memory. Each replica counts alone.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*fixedWindow
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type fixedWindow struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore creates a MemoryStore and starts its cleanup loop.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*fixedWindow),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go s.cleanupLoop(5 * time.Minute)
	return s
}

// Close stops the cleanup loop.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	fw, ok := s.windows[key]
	if !ok || !now.Before(fw.resetAt) {
		fw = &fixedWindow{resetAt: now.Add(window)}
		s.windows[key] = fw
	}
	fw.count++
	return fw.count, fw.resetAt, nil
}

// cleanupLoop periodically removes expired windows.
func (s *MemoryStore) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, fw := range s.windows {
		if !now.Before(fw.resetAt) {
			delete(s.windows, key)
		}
	}
}

const rateLimitKeyPrefix = "portfolio:ratelimit:"

// RedisStore shares counters between replicas through Redis.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a RedisStore on an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Hit increments the key and starts its expiry on the first hit of a window.
func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	k := rateLimitKeyPrefix + key

	count, err := s.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit INCR: %w", err)
	}
	if count == 1 {
		if err := s.rdb.PExpire(ctx, k, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("ratelimit PEXPIRE: %w", err)
		}
		return count, time.Now().Add(window), nil
	}

	ttl, err := s.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit PTTL: %w", err)
	}
	if ttl < 0 {
		// Key lost its expiry (e.g. PEXPIRE failed earlier); restart the window.
		if err := s.rdb.PExpire(ctx, k, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("ratelimit PEXPIRE: %w", err)
		}
		ttl = window
	}
	return count, time.Now().Add(ttl), nil
}
