package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	accountLockKeyPattern = "onboarding:lock:%d"
	defaultLockTTL        = 5 * time.Second
)

// releaseScript deletes the lock only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared across instances through Redis SETNX.
// Contention is reported immediately as ErrStateLocked.
type RedisLocker struct {
	client *redis.Client
	log    *slog.Logger
	ttl    time.Duration
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a Redis-backed locker; ttl <= 0 uses the default.
func NewRedisLocker(client *redis.Client, log *slog.Logger, ttl time.Duration) *RedisLocker {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &RedisLocker{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

// Lock acquires the per-account key or fails with ErrStateLocked.
func (l *RedisLocker) Lock(ctx context.Context, accountID int64) (Unlock, error) {
	if l.client == nil {
		l.log.Warn("redis client not configured for account locks; skipping", "account_id", accountID)
		return func() {}, nil
	}

	key := fmt.Sprintf(accountLockKeyPattern, accountID)
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		l.log.Error("failed to acquire account lock", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("acquire account lock: %w", err)
	}

	if !acquired {
		l.log.Warn("account lock already held", "account_id", accountID)
		return nil, ErrStateLocked
	}

	return func() {
		// the caller's ctx may already be cancelled; release regardless
		if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil {
			l.log.Error("failed to release account lock", "account_id", accountID, "error", err)
		}
	}, nil
}
