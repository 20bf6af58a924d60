package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hactl/internal/domain"
)

const DefaultRedisKey = "hactl:entities"

// RedisStore shares one snapshot across processes.
type RedisStore struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context) ([]domain.Entity, bool, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", s.key, err)
	}

	var entities []domain.Entity
	if err := json.Unmarshal(b, &entities); err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", s.key, err)
	}
	return entities, true, nil
}

func (s *RedisStore) Save(ctx context.Context, entities []domain.Entity) error {
	b, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.rdb.Set(ctx, s.key, b, s.ttl).Err()
}

func (s *RedisStore) Invalidate(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}
