package instrument

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "superorder:instruments"

type redisCmd interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache keeps a JSON snapshot of the table so other processes can start
// without downloading the master.
type RedisCache struct {
	client redisCmd
	key    string
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, key string, ttl time.Duration) *RedisCache {
	return newRedisCache(client, key, ttl)
}

func newRedisCache(client redisCmd, key string, ttl time.Duration) *RedisCache {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisCache{client: client, key: key, ttl: ttl}
}

func (c *RedisCache) Name() string { return "redis" }

func (c *RedisCache) Fetch(ctx context.Context) ([]model.Instrument, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("snapshot %s missing", c.key)
	}
	if err != nil {
		return nil, err
	}
	var rows []model.Instrument
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", c.key, err)
	}
	return rows, nil
}

func (c *RedisCache) Save(ctx context.Context, rows []model.Instrument) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, data, c.ttl).Err()
}
