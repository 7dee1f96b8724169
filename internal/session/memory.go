package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/guildpulse/dashboard/internal/domain"
	"github.com/guildpulse/dashboard/internal/metrics"
)

type memoryEntry struct {
	identity  *domain.Identity
	expiresAt time.Time
}

// MemoryStore is the default single-process Store. Expired entries are
// dropped lazily on access and swept on every Put.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	clock   clockwork.Clock
}

func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		entries: make(map[uuid.UUID]memoryEntry),
		clock:   clock,
	}
}

func (s *MemoryStore) Get(_ context.Context, sid uuid.UUID) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sid]
	if !ok {
		return nil, ErrNotFound
	}

	now := s.clock.Now()
	if now.After(entry.expiresAt) {
		delete(s.entries, sid)
		metrics.ActiveSessions.Set(float64(len(s.entries)))
		return nil, ErrNotFound
	}

	// Rolling window: a hit pushes expiry out again.
	entry.expiresAt = now.Add(TTL)
	s.entries[sid] = entry

	return entry.identity, nil
}

func (s *MemoryStore) Put(_ context.Context, sid uuid.UUID, identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}

	s.entries[sid] = memoryEntry{identity: identity, expiresAt: now.Add(TTL)}
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sid)
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	return nil
}
