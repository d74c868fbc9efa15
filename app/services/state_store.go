// Package services provides technical concerns shared by the business flows: tokens, captcha, short-lived state and file storage
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore keeps short-lived values such as editor drafts, tracking sessions and revoked tokens
type StateStore interface {
	// Get returns the value and whether it exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// RedisStateStore implements StateStore on Redis with a key prefix
type RedisStateStore struct {
	rc     *redis.Client
	prefix string
}

// NewRedisStateStore creates a Redis backed store
func NewRedisStateStore(rc *redis.Client, prefix string) *RedisStateStore {
	return &RedisStateStore{rc: rc, prefix: prefix}
}

func (s *RedisStateStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStateStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rc.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStateStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.rc.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStateStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := s.rc.SetNX(ctx, s.key(key), value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisStateStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(k))
	}
	if err := s.rc.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// --- In-memory store with TTL ---

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStateStore implements StateStore in process memory; used when Redis is disabled and in tests
type MemoryStateStore struct {
	mu   sync.Mutex
	m    map[string]memoryEntry
	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// NewMemoryStateStore creates an in-memory store. cleanup > 0 starts a background sweep.
func NewMemoryStateStore(cleanup time.Duration) *MemoryStateStore {
	s := &MemoryStateStore{
		m:    make(map[string]memoryEntry),
		now:  time.Now,
		stop: make(chan struct{}),
	}
	if cleanup > 0 {
		go s.cleanupLoop(cleanup)
	}
	return s
}

func (s *MemoryStateStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(s.now()) {
		delete(s.m, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (s *MemoryStateStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = s.entry(value, ttl)
	return nil
}

func (s *MemoryStateStore) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.m[key]; ok && !e.expired(s.now()) {
		return false, nil
	}
	s.m[key] = s.entry(value, ttl)
	return true, nil
}

func (s *MemoryStateStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.m, k)
	}
	return nil
}

// Close stops the background sweep
func (s *MemoryStateStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemoryStateStore) entry(value []byte, ttl time.Duration) memoryEntry {
	e := memoryEntry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	return e
}

func (s *MemoryStateStore) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := s.now()
			s.mu.Lock()
			for k, v := range s.m {
				if v.expired(now) {
					delete(s.m, k)
				}
			}
			s.mu.Unlock()
		}
	}
}
