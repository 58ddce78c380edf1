package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker serializes rebuilds inside one process. Held keys expire after
// their ttl so a crashed rebuild cannot block the family forever.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]memoryLease
	now   func() time.Time
	token func() (string, error)
}

type memoryLease struct {
	token     string
	expiresAt time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held:  make(map[string]memoryLease),
		now:   time.Now,
		token: newToken,
	}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token, err := l.token()
	if err != nil {
		return nil, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if lease, ok := l.held[key]; ok && (ttl <= 0 || now.Before(lease.expiresAt)) {
		return nil, false, nil
	}

	lease := memoryLease{token: token}
	if ttl > 0 {
		lease.expiresAt = now.Add(ttl)
	}
	l.held[key] = lease

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		if current, ok := l.held[key]; ok && current.token == token {
			delete(l.held, key)
		}
		return nil
	}
	return release, true, nil
}
