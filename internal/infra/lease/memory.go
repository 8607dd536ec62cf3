package lease

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Manager.
type Memory struct {
	mu     sync.Mutex
	now    func() time.Time
	leases map[string]memoryEntry
}

type memoryEntry struct {
	token   string
	expires time.Time
}

// NewMemory returns an empty in-process Manager.
func NewMemory() *Memory {
	return &Memory{now: time.Now, leases: make(map[string]memoryEntry)}
}

// TryAcquire implements Manager.
func (m *Memory) TryAcquire(_ context.Context, sourceID int64, ttl time.Duration) (Lease, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(sourceID)
	now := m.now()
	if e, ok := m.leases[k]; ok && now.Before(e.expires) {
		return nil, false, nil
	}
	token := uuid.NewString()
	m.leases[k] = memoryEntry{token: token, expires: now.Add(ttl)}
	return &memoryLease{m: m, key: k, token: token}, true, nil
}

type memoryLease struct {
	m     *Memory
	key   string
	token string
}

func (l *memoryLease) Release(context.Context) error {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()

	e, ok := l.m.leases[l.key]
	if !ok || e.token != l.token {
		return ErrNotHeld
	}
	delete(l.m.leases, l.key)
	return nil
}
