package cmd

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talentlane/automation/pkg/locks"
)

const redisLockTTL = 5 * time.Minute

// NewRuleLocker builds the per-rule run lock. A Redis URL enables
// cross-process locking; without one the lock only covers this process.
func NewRuleLocker(redisURL string) (locks.RuleLocker, error) {
	if redisURL == "" {
		return locks.NewMemoryLocker(), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return locks.NewRedisLocker(redis.NewClient(opts), redisLockTTL), nil
}
