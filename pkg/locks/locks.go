// Package locks provides per-rule advisory locking so at most one execution
// of a rule runs at a time, even when a scheduled tick and an incoming event
// race for the same rule.
package locks

import (
	"context"
	"sync"
)

// ReleaseFunc releases a held lock. Safe to call once.
type ReleaseFunc func()

// RuleLocker acquires an advisory lock for one rule without blocking.
type RuleLocker interface {
	// TryAcquire returns acquired=false when another run holds the rule.
	TryAcquire(ctx context.Context, ruleID string) (release ReleaseFunc, acquired bool, err error)
}

// MemoryLocker is a process-local locker used by single-instance deployments
// and tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, ruleID string) (ReleaseFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[ruleID]; taken {
		return nil, false, nil
	}

	l.held[ruleID] = struct{}{}

	var once sync.Once

	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, ruleID)
			l.mu.Unlock()
		})
	}

	return release, true, nil
}
