package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "automation:rule-lock:"

// releaseScript deletes the lock only when this holder still owns it, so a
// run that outlives the TTL cannot release a lock re-acquired by another run.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker coordinates rule locks across engine instances with SET NX.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a distributed locker. The TTL bounds how long a
// crashed instance can keep a rule locked.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, ruleID string) (ReleaseFunc, bool, error) {
	key := lockKeyPrefix + ruleID
	holder := uuid.New().String()

	acquired, err := l.client.SetNX(ctx, key, holder, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock for rule %s: %w", ruleID, err)
	}

	if !acquired {
		return nil, false, nil
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, holder).Err()
	}

	return release, true, nil
}
