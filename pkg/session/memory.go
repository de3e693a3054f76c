package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory storage. This is the
// default store: fast, no persistence, all drafts lost on process exit.
//
// MemoryStore is thread-safe using sync.RWMutex.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

// NewMemoryStore creates a new empty in-memory draft store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[string]*Draft),
	}
}

// Get retrieves a draft by token. Returns nil if no draft exists.
func (m *MemoryStore) Get(ctx context.Context, token string) (*Draft, error) {
	if token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.drafts[token].Clone(), nil
}

// Put persists a draft, replacing any existing draft for its token.
func (m *MemoryStore) Put(ctx context.Context, draft *Draft) error {
	if draft == nil {
		return fmt.Errorf("draft cannot be nil")
	}
	if draft.Token == "" {
		return fmt.Errorf("draft token cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.drafts[draft.Token] = draft.Clone()
	return nil
}

// Delete removes a draft. No-op if the token is unknown.
func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.drafts, token)
	return nil
}

// Expired returns the tokens of drafts whose last heartbeat is before the
// cutoff.
func (m *MemoryStore) Expired(ctx context.Context, olderThan time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tokens []string
	for token, draft := range m.drafts {
		if draft.LastHeartbeat.Before(olderThan) {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

// Close releases resources. MemoryStore holds none.
func (m *MemoryStore) Close() error {
	return nil
}

// Size returns the number of stored drafts. Useful for monitoring and
// testing.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.drafts)
}
