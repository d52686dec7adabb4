package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casedesk/internal/app"
	"casedesk/internal/model"
	"casedesk/internal/repository"
)

type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	history [][]model.ChatMessage
}

func (g *stubGenerator) Generate(_ context.Context, history []model.ChatMessage) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = append(g.history, history)
	return g.reply, g.err
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history)
}

func newChat(t *testing.T) *app.ChatService {
	t.Helper()
	return app.NewChatService(repository.NewMessageRepository(), nil)
}

func waitForMessages(t *testing.T, chat *app.ChatService, n int) []model.ChatMessage {
	t.Helper()
	var got []model.ChatMessage
	require.Eventually(t, func() bool {
		got = chat.ListMessages()
		return len(got) >= n
	}, 2*time.Second, 10*time.Millisecond)
	return got
}

func TestLocalResponder_AppendsReply(t *testing.T) {
	chat := newChat(t)
	gen := &stubGenerator{reply: "  The hearing is on Monday.  "}
	responder := NewLocalResponder(gen, chat, LocalResponderOptions{Sender: "AI"})
	chat.UsePublisher(responder, "AI")

	require.NoError(t, responder.Start(context.Background()))
	defer responder.Close()

	_, err := chat.SendMessage(context.Background(), app.SendMessageInput{Sender: "User", Content: "When is the hearing?"})
	require.NoError(t, err)

	msgs := waitForMessages(t, chat, 2)
	require.Len(t, msgs, 2)
	assert.Equal(t, "AI", msgs[1].Sender)
	assert.Equal(t, "The hearing is on Monday.", msgs[1].Content)

	// The reply itself must not trigger another generation.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, gen.calls())
	assert.Len(t, chat.ListMessages(), 2)
}

func TestLocalResponder_EmptyReply(t *testing.T) {
	chat := newChat(t)
	responder := NewLocalResponder(&stubGenerator{reply: "   "}, chat, LocalResponderOptions{})
	chat.UsePublisher(responder, "AI")
	require.NoError(t, responder.Start(context.Background()))
	defer responder.Close()

	_, err := chat.SendMessage(context.Background(), app.SendMessageInput{Sender: "User", Content: "hi"})
	require.NoError(t, err)

	msgs := waitForMessages(t, chat, 2)
	assert.Equal(t, emptyReply, msgs[1].Content)
}

func TestLocalResponder_GeneratorError(t *testing.T) {
	chat := newChat(t)
	gen := &stubGenerator{err: errors.New("upstream down")}
	responder := NewLocalResponder(gen, chat, LocalResponderOptions{})
	chat.UsePublisher(responder, "AI")
	require.NoError(t, responder.Start(context.Background()))
	defer responder.Close()

	_, err := chat.SendMessage(context.Background(), app.SendMessageInput{Sender: "User", Content: "hi"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return gen.calls() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, chat.ListMessages(), 1)
}

func TestLocalResponder_HistoryWindow(t *testing.T) {
	chat := newChat(t)
	for _, content := range []string{"one", "two", "three"} {
		_, err := chat.SendMessage(context.Background(), app.SendMessageInput{Sender: "User", Content: content})
		require.NoError(t, err)
	}

	gen := &stubGenerator{reply: "ok"}
	responder := NewLocalResponder(gen, chat, LocalResponderOptions{HistoryWindow: 2})
	chat.UsePublisher(responder, "AI")
	require.NoError(t, responder.Start(context.Background()))
	defer responder.Close()

	_, err := chat.SendMessage(context.Background(), app.SendMessageInput{Sender: "User", Content: "four"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return gen.calls() == 1 }, 2*time.Second, 10*time.Millisecond)
	gen.mu.Lock()
	history := gen.history[0]
	gen.mu.Unlock()
	require.Len(t, history, 2)
	assert.Equal(t, "three", history[0].Content)
	assert.Equal(t, "four", history[1].Content)
}

func TestLocalResponder_QueueFull(t *testing.T) {
	chat := newChat(t)
	responder := NewLocalResponder(&stubGenerator{reply: "ok"}, chat, LocalResponderOptions{QueueSize: 1})

	// Not started, so nothing drains the queue.
	require.NoError(t, responder.Publish(context.Background(), model.ChatMessage{ID: "a"}))
	err := responder.Publish(context.Background(), model.ChatMessage{ID: "b"})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestLocalResponder_CloseWithoutStart(t *testing.T) {
	responder := NewLocalResponder(&stubGenerator{}, newChat(t), LocalResponderOptions{})
	responder.Close()
}
