// Package preference remembers which watermark color each chat picked.
package preference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/redis/go-redis/v9"
)

// Store maps a chat session to its chosen style key. A session with no
// choice yields models.StyleNone and no error.
type Store interface {
	Get(ctx context.Context, sessionID int64) (models.StyleKey, error)
	Set(ctx context.Context, sessionID int64, key models.StyleKey) error
	Clear(ctx context.Context, sessionID int64) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[int64]models.StyleKey
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[int64]models.StyleKey)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID int64) (models.StyleKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs[sessionID], nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID int64, key models.StyleKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[sessionID] = key
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prefs, sessionID)
	return nil
}

// RedisStore keeps preferences as plain string keys with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(sessionID int64) string {
	return fmt.Sprintf("watermark_pref:%d", sessionID)
}

func (s *RedisStore) Get(ctx context.Context, sessionID int64) (models.StyleKey, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.StyleNone, nil
	}
	if err != nil {
		return models.StyleNone, fmt.Errorf("get preference: %w", err)
	}
	if s.ttl > 0 {
		s.client.Expire(ctx, s.key(sessionID), s.ttl)
	}
	return models.StyleKey(val), nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID int64, key models.StyleKey) error {
	if err := s.client.Set(ctx, s.key(sessionID), string(key), s.ttl).Err(); err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID int64) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}
