package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"casedesk/internal/model"
)

const EventMessageCreated = "chat.message.created"

// MessageEvent is the body published for every stored chat message.
type MessageEvent struct {
	Event   string            `json:"event"`
	Message model.ChatMessage `json:"message"`
}

type MessagePublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewMessagePublisher(conn *amqp.Connection, queueName string) (*MessagePublisher, error) {
	if err := DeclareQueue(conn, queueName); err != nil {
		return nil, err
	}
	return &MessagePublisher{
		conn:      conn,
		queueName: queueName,
	}, nil
}

func EncodeMessageEvent(msg model.ChatMessage) ([]byte, error) {
	payload, err := json.Marshal(MessageEvent{Event: EventMessageCreated, Message: msg})
	if err != nil {
		return nil, fmt.Errorf("marshal message event failed: %w", err)
	}
	return payload, nil
}

func (p *MessagePublisher) Publish(ctx context.Context, msg model.ChatMessage) error {
	payload, err := EncodeMessageEvent(msg)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ch.PublishWithContext(
		pubCtx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.Timestamp,
			Type:         EventMessageCreated,
		},
	); err != nil {
		return fmt.Errorf("publish message failed: %w", err)
	}
	return nil
}
