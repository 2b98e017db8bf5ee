// Package store keeps per-chat conversation history between agent runs.
package store

import (
	"context"

	"github.com/effective-security/chatops/pkg/llms"
)

// DefaultMaxMessages bounds the history kept per chat; older messages are
// dropped first.
const DefaultMaxMessages = 50

// MessageStore keeps the ordered message history of a chat.
type MessageStore interface {
	// Messages returns the stored history of the chat, oldest first.
	Messages(ctx context.Context, chatID string) []llms.Message
	// Add appends a message to the chat's history.
	Add(ctx context.Context, chatID string, msg llms.Message) error
	// Reset drops the chat's history.
	Reset(ctx context.Context, chatID string) error
}
