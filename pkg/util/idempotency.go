package util

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// pendingMarker is stored while the first request holding a key is still in flight.
const pendingMarker = "pending"

// ErrKeyInFlight means another request with the same idempotency key has not finished yet.
var ErrKeyInFlight = errors.New("idempotency key in flight")

// IdempotencyKeys remembers which task a client-supplied Idempotency-Key created.
type IdempotencyKeys struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewIdempotencyKeys(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *IdempotencyKeys {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyKeys{rdb: rdb, ttl: ttl, logger: logger}
}

func formatKey(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}

// Acquire tries to claim key for scope.
// Returns ("", true, nil) when this is the first request.
// Returns (id, false, nil) when a previous request already completed with id.
// Redis failures are logged and treated as a first request so writes are never blocked.
func (k *IdempotencyKeys) Acquire(ctx context.Context, scope, key string) (string, bool, error) {
	redisKey := formatKey(scope, key)

	ok, err := k.rdb.SetNX(ctx, redisKey, pendingMarker, k.ttl).Result()
	if err != nil {
		k.logger.Warn("Redis idempotency check failed, allowing request",
			zap.String("scope", scope),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", true, nil
	}
	if ok {
		return "", true, nil
	}

	existing, err := k.rdb.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return "", true, nil
	}
	if err != nil {
		k.logger.Warn("Redis idempotency lookup failed, allowing request",
			zap.String("scope", scope),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", true, nil
	}
	if existing == pendingMarker {
		return "", false, ErrKeyInFlight
	}

	k.logger.Info("Replayed idempotent request",
		zap.String("scope", scope),
		zap.String("key", key),
		zap.String("id", existing),
	)
	return existing, false, nil
}

// Complete records the id the request produced.
func (k *IdempotencyKeys) Complete(ctx context.Context, scope, key, id string) {
	if err := k.rdb.Set(ctx, formatKey(scope, key), id, k.ttl).Err(); err != nil {
		k.logger.Warn("Failed to record idempotency key",
			zap.String("scope", scope),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Release drops a pending key so the client can retry after a failure.
func (k *IdempotencyKeys) Release(ctx context.Context, scope, key string) {
	if err := k.rdb.Del(ctx, formatKey(scope, key)).Err(); err != nil {
		k.logger.Warn("Failed to release idempotency key",
			zap.String("scope", scope),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
