package store

import (
	"context"
	"sync"

	"github.com/effective-security/chatops/pkg/llms"
)

type inMemory struct {
	mu      sync.RWMutex
	max     int
	storage map[string][]llms.Message
}

// NewMemoryStore returns a process-local MessageStore that keeps at most
// DefaultMaxMessages messages per chat.
func NewMemoryStore() MessageStore {
	return NewMemoryStoreWithLimit(DefaultMaxMessages)
}

// NewMemoryStoreWithLimit returns a process-local MessageStore with a custom
// per-chat message cap. A cap of zero or less keeps all messages.
func NewMemoryStoreWithLimit(maxMessages int) MessageStore {
	return &inMemory{max: maxMessages}
}

func (m *inMemory) Messages(_ context.Context, chatID string) []llms.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil
	}
	return m.storage[chatID]
}

func (m *inMemory) Add(_ context.Context, chatID string, msg llms.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]llms.Message)
	}
	msgs := append(m.storage[chatID], msg)
	if m.max > 0 && len(msgs) > m.max {
		msgs = msgs[len(msgs)-m.max:]
	}
	m.storage[chatID] = msgs
	return nil
}

func (m *inMemory) Reset(_ context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, chatID)
	}
	return nil
}
