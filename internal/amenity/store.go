package amenity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yourorg/hbnb-web/internal/redisx"
)

// Store keeps one Selection per browser session.
type Store interface {
	// Load returns the session's selection, or an empty one if none exists.
	Load(ctx context.Context, sessionID string) (*Selection, error)
	Save(ctx context.Context, sessionID string, sel *Selection) error
	// Update applies fn to the stored selection atomically with respect to
	// other writers of the same session and returns the stored result.
	Update(ctx context.Context, sessionID string, fn func(*Selection)) (*Selection, error)
	Delete(ctx context.Context, sessionID string) error
}

type MemoryStore struct {
	mu   sync.Mutex
	sels map[string]*Selection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sels: make(map[string]*Selection)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sel, ok := m.sels[sessionID]; ok {
		return sel.Clone(), nil
	}
	return &Selection{}, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, sel *Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sels[sessionID] = sel.Clone()
	return nil
}

func (m *MemoryStore) Update(_ context.Context, sessionID string, fn func(*Selection)) (*Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sel := &Selection{}
	if cur, ok := m.sels[sessionID]; ok {
		sel = cur.Clone()
	}
	fn(sel)
	m.sels[sessionID] = sel.Clone()
	return sel, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sels, sessionID)
	return nil
}

const redisKeyPrefix = "amenity:sel:"

// RedisStore persists selections as JSON. Every Load and write resets the
// TTL, so a session expires TTL after its last use.
type RedisStore struct {
	Redis *redisx.Client
	TTL   time.Duration
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Selection, error) {
	val, err := s.Redis.GetEx(ctx, redisKeyPrefix+sessionID, s.TTL)
	if errors.Is(err, redis.Nil) {
		return &Selection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	sel := &Selection{}
	if err := json.Unmarshal([]byte(val), sel); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return sel, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, sel *Selection) error {
	b, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	if err := s.Redis.Set(ctx, redisKeyPrefix+sessionID, string(b), s.TTL); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, sessionID string, fn func(*Selection)) (*Selection, error) {
	var out *Selection
	err := s.Redis.Update(ctx, redisKeyPrefix+sessionID, s.TTL, func(old string, exists bool) (string, error) {
		sel := &Selection{}
		if exists {
			if err := json.Unmarshal([]byte(old), sel); err != nil {
				return "", fmt.Errorf("decode selection: %w", err)
			}
		}
		fn(sel)
		b, err := json.Marshal(sel)
		if err != nil {
			return "", err
		}
		out = sel
		return string(b), nil
	})
	if err != nil {
		return nil, fmt.Errorf("update selection: %w", err)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.Redis.Del(ctx, redisKeyPrefix+sessionID)
}
