package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"gym-checkin-backend/config"
)

const sessionKeyFmt = "session:%s"

// ErrSessionNotFound is returned by Take for unknown, expired or revoked sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps refresh sessions, mapping a session id to its user id.
// Take removes the session and returns its user id in one atomic step, so only
// one caller can ever consume a given session.
type SessionStore interface {
	Save(ctx context.Context, id, userID string, ttl time.Duration) error
	Take(ctx context.Context, id string) (string, error)
	Revoke(ctx context.Context, id string) error
}

// NewSessionStore builds the backend selected by cfg.
func NewSessionStore(ctx context.Context, cfg config.SessionConfig) (SessionStore, error) {
	if cfg.Backend != "redis" {
		return NewMemorySessionStore(), nil
	}

	rdb := NewRedisClient(cfg.Redis)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
	}
	return NewRedisSessionStore(rdb), nil
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type redisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func (s *redisSessionStore) Save(ctx context.Context, id, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, fmt.Sprintf(sessionKeyFmt, id), userID, ttl).Err()
}

// Take relies on GETDEL, available since Redis 6.2.
func (s *redisSessionStore) Take(ctx context.Context, id string) (string, error) {
	userID, err := s.rdb.GetDel(ctx, fmt.Sprintf(sessionKeyFmt, id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	return userID, err
}

func (s *redisSessionStore) Revoke(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, fmt.Sprintf(sessionKeyFmt, id)).Err()
}

// memorySessionStore serves single-instance deployments and tests.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions *cache.Cache
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (s *memorySessionStore) Save(ctx context.Context, id, userID string, ttl time.Duration) error {
	s.sessions.Set(id, userID, ttl)
	return nil
}

func (s *memorySessionStore) Take(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.sessions.Get(id)
	if !found {
		return "", ErrSessionNotFound
	}
	s.sessions.Delete(id)
	return v.(string), nil
}

func (s *memorySessionStore) Revoke(ctx context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}
