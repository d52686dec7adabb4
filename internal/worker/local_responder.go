package worker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"casedesk/internal/ai"
	"casedesk/internal/app"
	"casedesk/internal/metrics"
	"casedesk/internal/model"
)

var ErrQueueFull = errors.New("responder queue full")

const emptyReply = "The model returned an empty response."

// MessageSink is the part of the chat service a responder writes through.
type MessageSink interface {
	SendMessage(ctx context.Context, input app.SendMessageInput) (*model.ChatMessage, error)
	RecentMessages(limit int) []model.ChatMessage
}

type LocalResponderOptions struct {
	Sender        string
	HistoryWindow int
	Timeout       time.Duration
	QueueSize     int
	Logger        *slog.Logger
}

// LocalResponder answers chat messages in-process with an ai.Generator. It
// implements app.MessagePublisher; one goroutine drains the queue so replies
// land in the order questions arrived.
type LocalResponder struct {
	generator ai.Generator
	sink      MessageSink
	opts      LocalResponderOptions
	queue     chan model.ChatMessage

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewLocalResponder(generator ai.Generator, sink MessageSink, opts LocalResponderOptions) *LocalResponder {
	if opts.Sender == "" {
		opts.Sender = "AI"
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &LocalResponder{
		generator: generator,
		sink:      sink,
		opts:      opts,
		queue:     make(chan model.ChatMessage, opts.QueueSize),
	}
}

// Publish enqueues msg without blocking the request that stored it.
func (r *LocalResponder) Publish(_ context.Context, msg model.ChatMessage) error {
	select {
	case r.queue <- msg:
		return nil
	default:
		metrics.ResponderReplies.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

func (r *LocalResponder) Start(ctx context.Context) error {
	if r.cancel != nil {
		return nil
	}
	workerCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-workerCtx.Done():
				return
			case msg := <-r.queue:
				r.respond(workerCtx, msg)
			}
		}
	}()
	return nil
}

func (r *LocalResponder) respond(ctx context.Context, msg model.ChatMessage) {
	genCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	history := r.sink.RecentMessages(r.opts.HistoryWindow)
	reply, err := r.generator.Generate(genCtx, history)
	if err != nil {
		metrics.ResponderReplies.WithLabelValues("error").Inc()
		r.opts.Logger.Error("generate reply failed", "message_id", msg.ID, "error", err)
		return
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = emptyReply
	}

	if _, err := r.sink.SendMessage(ctx, app.SendMessageInput{Sender: r.opts.Sender, Content: reply}); err != nil {
		metrics.ResponderReplies.WithLabelValues("error").Inc()
		r.opts.Logger.Error("store reply failed", "message_id", msg.ID, "error", err)
		return
	}
	metrics.ResponderReplies.WithLabelValues("ok").Inc()
}

func (r *LocalResponder) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
