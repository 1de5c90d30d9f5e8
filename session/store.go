// File: session/store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"carhub/models"
	"carhub/utils"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound is returned when no session exists for an id. Callers treat it
// as the Anonymous state, never as a failure.
var ErrNotFound = errors.New("auth session not found")

// Store persists auth sessions between requests.
type Store interface {
	Save(ctx context.Context, session *models.AuthSession) error
	Get(ctx context.Context, sessionID string) (*models.AuthSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps sessions in Redis with a TTL, one JSON blob per session.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) Save(ctx context.Context, session *models.AuthSession) error {
	session.LastUpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal auth session: %w", err)
	}
	if err := s.Client.Set(ctx, utils.AuthSessionPrefix+session.SessionID, data, s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to save auth session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.AuthSession, error) {
	data, err := s.Client.Get(ctx, utils.AuthSessionPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load auth session: %w", err)
	}
	var session models.AuthSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.Client.Del(ctx, utils.AuthSessionPrefix+sessionID).Err()
}

// MemoryStore is an in-process Store used by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.AuthSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.AuthSession)}
}

func (s *MemoryStore) Save(ctx context.Context, session *models.AuthSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.LastUpdatedAt = time.Now()
	copied := *session
	s.sessions[session.SessionID] = &copied
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*models.AuthSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
