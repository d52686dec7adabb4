package repository

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"casedesk/internal/model"
)

// MessageRepository keeps chat messages in process memory, in insertion order.
// A restart clears it.
type MessageRepository struct {
	mu       sync.RWMutex
	messages []model.ChatMessage
	entropy  io.Reader
	last     time.Time
	now      func() time.Time
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Create assigns the id and timestamp and appends the message.
func (r *MessageRepository) Create(sender, content string) (model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now().UTC()
	if ts.Before(r.last) {
		ts = r.last
	}
	id, err := ulid.New(ulid.Timestamp(ts), r.entropy)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("generate message id failed: %w", err)
	}
	r.last = ts

	message := model.ChatMessage{
		ID:        id.String(),
		Sender:    sender,
		Content:   content,
		Timestamp: ts,
	}
	r.messages = append(r.messages, message)
	return message, nil
}

func (r *MessageRepository) List() []model.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// ListRecent returns at most limit of the newest messages, oldest first.
func (r *MessageRepository) ListRecent(limit int) []model.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if limit > 0 && len(r.messages) > limit {
		start = len(r.messages) - limit
	}
	out := make([]model.ChatMessage, len(r.messages)-start)
	copy(out, r.messages[start:])
	return out
}

func (r *MessageRepository) GetByID(id string) (*model.ChatMessage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.messages {
		if r.messages[i].ID == id {
			m := r.messages[i]
			return &m, true
		}
	}
	return nil, false
}

// DeleteByID reports whether a message was removed.
func (r *MessageRepository) DeleteByID(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.messages {
		if r.messages[i].ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return true
		}
	}
	return false
}

func (r *MessageRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.messages)
}
