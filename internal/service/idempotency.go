package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// RedisIdempotency - 웹훅 재전송 중복 제거 (여러 게이트웨이 인스턴스 간 공유)
type RedisIdempotency struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisIdempotency(rdb *redis.Client, prefix string) *RedisIdempotency {
	return &RedisIdempotency{rdb: rdb, prefix: prefix, ttl: idempotencyTTL}
}

// Claim - SET NX로 원자적으로 key를 선점. 이미 있으면 false
func (r *RedisIdempotency) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, r.key(key), "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

func (r *RedisIdempotency) Release(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

func (r *RedisIdempotency) key(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}
