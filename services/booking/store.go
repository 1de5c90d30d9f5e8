// File: services/booking/store.go
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"carhub/utils"

	"github.com/go-redis/redis/v8"
)

// FormStore persists booking form sessions between requests.
type FormStore interface {
	Save(ctx context.Context, form *FormSession) error
	Get(ctx context.Context, formID string) (*FormSession, error)
	Delete(ctx context.Context, formID string) error
}

// RedisFormStore keeps form sessions in Redis with a TTL, one JSON blob per
// dialog instance.
type RedisFormStore struct {
	Client *redis.Client
}

func NewRedisFormStore(client *redis.Client) *RedisFormStore {
	return &RedisFormStore{Client: client}
}

func (s *RedisFormStore) Save(ctx context.Context, form *FormSession) error {
	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to marshal form session: %w", err)
	}
	if err := s.Client.Set(ctx, utils.FormSessionPrefix+form.ID, data, utils.FormSessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store form session: %w", err)
	}
	return nil
}

func (s *RedisFormStore) Get(ctx context.Context, formID string) (*FormSession, error) {
	data, err := s.Client.Get(ctx, utils.FormSessionPrefix+formID).Result()
	if err == redis.Nil {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load form session: %w", err)
	}
	var form FormSession
	if err := json.Unmarshal([]byte(data), &form); err != nil {
		return nil, fmt.Errorf("failed to parse form session: %w", err)
	}
	return &form, nil
}

func (s *RedisFormStore) Delete(ctx context.Context, formID string) error {
	return s.Client.Del(ctx, utils.FormSessionPrefix+formID).Err()
}

// MemoryFormStore is an in-process FormStore used by tests.
type MemoryFormStore struct {
	mu    sync.RWMutex
	forms map[string]*FormSession
}

func NewMemoryFormStore() *MemoryFormStore {
	return &MemoryFormStore{forms: make(map[string]*FormSession)}
}

func (s *MemoryFormStore) Save(ctx context.Context, form *FormSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *form
	s.forms[form.ID] = &copied
	return nil
}

func (s *MemoryFormStore) Get(ctx context.Context, formID string) (*FormSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.forms[formID]
	if !ok {
		return nil, ErrFormNotFound
	}
	copied := *form
	return &copied, nil
}

func (s *MemoryFormStore) Delete(ctx context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forms, formID)
	return nil
}
