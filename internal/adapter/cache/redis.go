package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"exchange-rate-resolver/internal/domain/ports"
)

// RedisStore keeps entries in Redis under a common key prefix. Expiry is left to Redis.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb:    client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func InitRedisStore(ctx context.Context, options *redis.Options, prefix string, ttl time.Duration) (*RedisStore, error) {
	const op = "cache.redis.InitRedisStore"

	redisClient := redis.NewClient(options)

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		_ = redisClient.Close()
		return nil, unavailable(op, err)
	}

	return NewRedisStore(redisClient, prefix, ttl), nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const op = "cache.redis.Get"

	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable(op, err)
	}

	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	const op = "cache.redis.Set"

	if err := s.rdb.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	const op = "cache.redis.Delete"

	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// unavailable tags a backend failure with ErrCacheUnavailable and keeps the cause
// reachable, so context cancellation still matches through the cache layer.
func unavailable(op string, err error) error {
	return errors.Wrap(fmt.Errorf("%w: %w", ports.ErrCacheUnavailable, err), op)
}
