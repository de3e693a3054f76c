package archive

import (
	"context"
	"fmt"
	"sync"
)

// MemorySink implements Sink in memory. It is intended for tests and
// embedding; nothing survives process exit.
type MemorySink struct {
	mu        sync.RWMutex
	responses map[string]*FinalizedResponse // keyed by session token
	facts     []*AuditFact
}

// NewMemorySink creates a new empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		responses: make(map[string]*FinalizedResponse),
	}
}

// Archive stores a finalized response, rejecting duplicates per token.
func (m *MemorySink) Archive(ctx context.Context, response *FinalizedResponse) error {
	if response == nil {
		return fmt.Errorf("response cannot be nil")
	}
	if response.SessionToken == "" {
		return fmt.Errorf("response session token cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.responses[response.SessionToken]; exists {
		return fmt.Errorf("response already archived for session %q", response.SessionToken)
	}
	m.responses[response.SessionToken] = response
	return nil
}

// Audit stores one audit fact.
func (m *MemorySink) Audit(ctx context.Context, fact *AuditFact) error {
	if fact == nil {
		return fmt.Errorf("fact cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.facts = append(m.facts, fact)
	return nil
}

// Close releases resources. MemorySink holds none.
func (m *MemorySink) Close() error {
	return nil
}

// Response returns the archived response for a session token, or nil.
func (m *MemorySink) Response(token string) *FinalizedResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.responses[token]
}

// Facts returns a copy of all recorded audit facts, in emission order.
func (m *MemorySink) Facts() []*AuditFact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*AuditFact(nil), m.facts...)
}
