package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long an idle session survives before a store expires it.
const DefaultTTL = 24 * time.Hour

type memoryEntry struct {
	session  Session
	deadline time.Time
}

// MemoryStore keeps sessions in process memory with per-entry expiry. A
// background janitor reclaims expired entries; reads treat an expired entry
// as missing even before the janitor gets to it.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStore creates a memory store. A non-positive ttl falls back to
// DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		entries: map[string]memoryEntry{},
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Close stops the janitor. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *MemoryStore) janitor() {
	interval := s.ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, entry := range s.entries {
				if now.After(entry.deadline) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Get returns a copy of the stored session, so callers can mutate the result
// without racing the store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.deadline) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	out := entry.session
	return &out, nil
}

func (s *MemoryStore) Put(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	s.entries[sess.ID] = memoryEntry{
		session:  *sess,
		deadline: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included until the
// janitor runs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
