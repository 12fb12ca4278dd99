package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends ReportEvents to a durable queue. A nil *Publisher drops
// events silently, which is how the service runs without a broker.
type Publisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher dials the broker and declares the queue. It returns nil, and
// logs why, when url is empty or the broker is unreachable.
func NewPublisher(url, queue string) *Publisher {
	if url == "" {
		return nil
	}
	p := &Publisher{url: url, queue: queue}
	if err := p.connect(); err != nil {
		slog.Warn("rabbitmq unavailable, report events disabled", "error", err)
		return nil
	}
	slog.Info("rabbitmq connected", "queue", queue)
	return p
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

// Publish sends ev as a persistent JSON message. Failures are logged and
// never surface to the request that triggered the event.
func (p *Publisher) Publish(ctx context.Context, ev ReportEvent) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("failed to encode report event", "type", ev.Type, "error", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(); err != nil {
			slog.Warn("failed to reconnect to rabbitmq", "error", err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         string(ev.Type),
		Body:         body,
	})
	if err != nil {
		slog.Warn("failed to publish report event", "type", ev.Type, "report_id", ev.ReportID, "error", err)
	}
}

// Healthy reports whether the publisher holds an open channel.
func (p *Publisher) Healthy() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch != nil && !p.ch.IsClosed()
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
