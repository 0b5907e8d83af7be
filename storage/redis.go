// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisKey is the hash holding every stored entry.
const redisKey = "quickpoll:storage"

// Redis keeps entries as fields of a single hash.
type Redis struct {
	cli *redis.Client
}

// ConnectRedis connects to addr and pings the server to ensure the
// connection is working. addr may be host:port or a redis:// URL.
func ConnectRedis(ctx context.Context, addr string) (*Redis, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr}
	}

	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{cli: cli}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.cli.HGet(ctx, redisKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("hget %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.cli.HSet(ctx, redisKey, key, value).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.cli.HDel(ctx, redisKey, keys...).Err(); err != nil {
		return fmt.Errorf("hdel: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.cli.Close()
}
