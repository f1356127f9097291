package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps snapshots in redis under a key prefix, each with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore wraps client. A zero ttl keeps keys forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.Named("RedisStore"),
	}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	if s == nil || s.client == nil {
		return nil, false, ErrNotConfigured
	}
	b, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("Failed to get snapshot", zap.String("id", id), zap.Error(err))
		return nil, false, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return b, true, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, v []byte) error {
	if s == nil || s.client == nil {
		return ErrNotConfigured
	}
	if err := s.client.Set(ctx, s.key(id), v, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to put snapshot", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("put snapshot %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) NewID() string {
	return uuid.NewString()
}
