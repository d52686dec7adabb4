package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// New dials the broker and proves it is usable by opening a channel.
func New(ctx context.Context, url string) (*amqp.Connection, error) {
	type result struct {
		conn *amqp.Connection
		err  error
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		conn, err := amqp.DialConfig(url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Dial:      amqp.DefaultDial(5 * time.Second),
		})
		done <- result{conn: conn, err: err}
	}()

	var conn *amqp.Connection
	select {
	case <-dialCtx.Done():
		go func() {
			if res := <-done; res.conn != nil {
				_ = res.conn.Close()
			}
		}()
		return nil, fmt.Errorf("dial rabbitmq timeout: %w", dialCtx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("dial rabbitmq failed: %w", res.err)
		}
		conn = res.conn
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	_ = ch.Close()
	return conn, nil
}

// DeclareQueue declares a durable queue on a short-lived channel.
func DeclareQueue(conn *amqp.Connection, name string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s failed: %w", name, err)
	}
	return nil
}
