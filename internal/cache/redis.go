package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisKV struct {
	rdb *goredis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewRedis connects to Redis and returns a KV over it. The connection is
// verified once at startup; failures after that are logged and swallowed.
func NewRedis(addr string, db int, ttl time.Duration, log *zap.Logger) (*redisKV, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &redisKV{rdb: rdb, ttl: ttl, log: log.With(zap.String("component", "redis-cache"))}, nil
}

func (r *redisKV) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	v, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			r.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return v, true
}

func (r *redisKV) Set(ctx context.Context, key string, val []byte) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := r.rdb.Set(ctx, key, val, r.ttl).Err(); err != nil {
		r.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *redisKV) Close() error { return r.rdb.Close() }
