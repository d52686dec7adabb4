package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"casedesk/internal/metrics"
	"casedesk/internal/model"
	"casedesk/internal/repository"
)

// MessagePublisher hands a stored message to whatever generates replies.
type MessagePublisher interface {
	Publish(ctx context.Context, msg model.ChatMessage) error
}

type ChatService struct {
	messageRepo     *repository.MessageRepository
	publisher       MessagePublisher
	responderSender string
	logger          *slog.Logger
}

type SendMessageInput struct {
	Sender  string
	Content string
}

func NewChatService(messageRepo *repository.MessageRepository, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// UsePublisher attaches a reply generator. Messages from responderSender are
// never published, so a responder cannot answer itself.
func (s *ChatService) UsePublisher(publisher MessagePublisher, responderSender string) {
	s.publisher = publisher
	s.responderSender = strings.TrimSpace(responderSender)
}

func (s *ChatService) ListMessages() []model.ChatMessage {
	return s.messageRepo.List()
}

func (s *ChatService) RecentMessages(limit int) []model.ChatMessage {
	return s.messageRepo.ListRecent(limit)
}

func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*model.ChatMessage, error) {
	sender := strings.TrimSpace(input.Sender)
	if sender == "" || strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: sender and content are required", ErrInvalidInput)
	}

	message, err := s.messageRepo.Create(sender, input.Content)
	if err != nil {
		return nil, err
	}
	metrics.ChatMessages.Set(float64(s.messageRepo.Count()))

	if s.publisher != nil && !strings.EqualFold(sender, s.responderSender) {
		if err := s.publisher.Publish(ctx, message); err != nil {
			s.logger.Warn("publish chat message failed", "message_id", message.ID, "error", err)
		}
	}
	return &message, nil
}

func (s *ChatService) DeleteMessage(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: message id is required", ErrInvalidInput)
	}
	if !s.messageRepo.DeleteByID(id) {
		return ErrMessageNotFound
	}
	metrics.ChatMessages.Set(float64(s.messageRepo.Count()))
	return nil
}
