// Package ai defines the contracts for the AI assistant collaborator: a
// single-message summarizer used by enrichment, and a conversational chat
// contract used by the REST surface. Both are consumed at their interface
// only; the real assistant is an external collaborator.
package ai

import (
	"context"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// Summarizer produces a short, priority-budgeted summary of a notification.
type Summarizer interface {
	// SummarizeMessage returns a summary of at most wordBudget words.
	SummarizeMessage(ctx context.Context, n domain.Notification, wordBudget int) (string, error)
}

// ChatMessage is one turn in a chat history.
type ChatMessage struct {
	Role    string // "user" or "assistant"
	Content string
}

// Chatter answers a free-form prompt given prior history and market context.
type Chatter interface {
	Chat(ctx context.Context, history []ChatMessage, marketContext map[string]any, prompt string) (string, error)
}
