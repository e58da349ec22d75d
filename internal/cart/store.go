package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists the cart across sessions.
type Store interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// cartKey is the single key the whole cart is serialized under.
const cartKey = "inkrunner:cart"

// RedisStore keeps the serialized cart under a fixed key.
type RedisStore struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, key: cartKey, ttl: 30 * 24 * time.Hour}
}

func (s *RedisStore) Load(ctx context.Context) ([]Item, error) {
	val, err := s.rdb.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cart: failed to read stored cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, fmt.Errorf("cart: malformed stored cart: %w", err)
	}

	return items, nil
}

func (s *RedisStore) Save(ctx context.Context, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart: failed to serialize cart: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cart: failed to write stored cart: %w", err)
	}
	return nil
}

// MemoryStore is the fallback when no persistence backend is configured, and
// the store used in tests.
type MemoryStore struct {
	items []Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) ([]Item, error) {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, items []Item) error {
	s.items = make([]Item, len(items))
	copy(s.items, items)
	return nil
}
