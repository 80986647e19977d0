package sessioncache

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
)

type memoryEntry struct {
	session   domain.Session
	expiresAt time.Time
}

// Memory is an in-process Cache for tests and single-node development.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock overrides the time source.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) Get(_ context.Context, userID string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[Key(userID)]
	if !ok {
		return domain.Session{}, ErrMiss
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, Key(userID))
		return domain.Session{}, ErrMiss
	}
	return e.session, nil
}

func (m *Memory) Set(_ context.Context, s domain.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[Key(s.UserID)] = memoryEntry{session: s, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, Key(userID))
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// Sweep drops expired entries and returns how many were removed.
func (m *Memory) Sweep(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}
