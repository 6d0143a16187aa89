// Package dedup guards webhook processing against Telegram redelivering an update.
package dedup

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tgdocs/internal/config"
)

// Deduper claims update ids so each is processed once.
type Deduper interface {
	// Claim returns false if updateID was already claimed and not released.
	Claim(ctx context.Context, updateID int64) (bool, error)
	// Release forgets a claim so a redelivery is processed again.
	Release(ctx context.Context, updateID int64) error
}

const keyPrefix = "tgdocs:update:"

// Redis is a Deduper backed by SETNX with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Deduper = (*Redis)(nil)

// NewRedis creates a Redis deduper. Claims expire after cfg.DedupTTLSec.
func NewRedis(cfg config.RedisConfig) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: time.Duration(cfg.DedupTTLSec) * time.Second,
	}
}

func key(updateID int64) string {
	return keyPrefix + strconv.FormatInt(updateID, 10)
}

func (r *Redis) Claim(ctx context.Context, updateID int64) (bool, error) {
	ok, err := r.client.SetNX(ctx, key(updateID), "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim update %d: %w", updateID, err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, updateID int64) error {
	if err := r.client.Del(ctx, key(updateID)).Err(); err != nil {
		return fmt.Errorf("release update %d: %w", updateID, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
