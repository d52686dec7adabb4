package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"casedesk/internal/app"
	"casedesk/internal/metrics"
)

// ReplyPayload is what an external responder puts on the reply queue.
type ReplyPayload struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	InReplyTo string `json:"in_reply_to,omitempty"`
}

var errBadReply = errors.New("malformed reply")

// ReplyConsumer appends replies produced outside the process to the chat.
type ReplyConsumer struct {
	conn          *amqp.Connection
	sink          MessageSink
	queueName     string
	defaultSender string
	logger        *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReplyConsumer(conn *amqp.Connection, sink MessageSink, queueName, defaultSender string, logger *slog.Logger) *ReplyConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplyConsumer{
		conn:          conn,
		sink:          sink,
		queueName:     queueName,
		defaultSender: defaultSender,
		logger:        logger,
	}
}

func (w *ReplyConsumer) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare reply queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume reply queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.logger.Warn("reply queue delivery channel closed", "queue", w.queueName)
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					metrics.ResponderReplies.WithLabelValues("error").Inc()
					w.logger.Error("handle reply failed", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				metrics.ResponderReplies.WithLabelValues("ok").Inc()
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ReplyConsumer) handle(ctx context.Context, body []byte) error {
	var reply ReplyPayload
	if err := json.Unmarshal(body, &reply); err != nil {
		return fmt.Errorf("%w: %v", errBadReply, err)
	}
	sender := strings.TrimSpace(reply.Sender)
	if sender == "" {
		sender = w.defaultSender
	}
	if _, err := w.sink.SendMessage(ctx, app.SendMessageInput{Sender: sender, Content: reply.Content}); err != nil {
		return fmt.Errorf("store reply failed: %w", err)
	}
	return nil
}

func (w *ReplyConsumer) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
