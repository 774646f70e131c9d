package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-verify-mail/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher hands verification emails to a mail-sender worker through a durable queue.
// A successful Send means the broker accepted the message, not that it was delivered.
type Publisher struct {
	conn    *amqp.Connection
	channel channel
	queue   string
}

// New dials url and declares a durable queue.
func New(url, queueName string) (*Publisher, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{conn: conn, channel: ch, queue: q.Name}, nil
}

func (p *Publisher) Send(ctx context.Context, msg domain.Message) error {
	const op = "rabbitmq.Send"

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Type:         "verification_email",
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *Publisher) Close() {
	_ = p.channel.Close()
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
