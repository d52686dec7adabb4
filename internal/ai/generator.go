package ai

import (
	"context"

	"casedesk/internal/model"
)

// Generator produces a reply to the tail of a conversation.
type Generator interface {
	Generate(ctx context.Context, history []model.ChatMessage) (string, error)
}
