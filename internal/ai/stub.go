package ai

import (
	"context"
	"strings"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// StubAssistant is a deterministic Summarizer/Chatter used in tests and as
// a placeholder wiring when no real AI collaborator is configured. It never
// fails, so callers exercising failure-fallback paths should use a fake
// that returns an error instead.
type StubAssistant struct{}

// SummarizeMessage truncates the notification's message to wordBudget words.
func (StubAssistant) SummarizeMessage(ctx context.Context, n domain.Notification, wordBudget int) (string, error) {
	words := strings.Fields(n.Message)
	if len(words) > wordBudget {
		words = words[:wordBudget]
	}
	return strings.Join(words, " "), nil
}

// Chat echoes the prompt; it exists only so callers have a working default.
func (StubAssistant) Chat(ctx context.Context, history []ChatMessage, marketContext map[string]any, prompt string) (string, error) {
	return prompt, nil
}
