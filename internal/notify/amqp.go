package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"fintrack/internal/backend"
	"fintrack/internal/log"
)

// Levels carried on published notification messages.
const (
	LevelInfo = "info"
	LevelWarn = "warn"
)

// Message is the wire form of a published notification.
type Message struct {
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AMQPNotifier publishes notifications to a durable direct exchange so
// external consumers (mail, chat bots) can deliver them.
type AMQPNotifier struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	logger   *log.Logger
}

func NewAMQPNotifier(url, exchange, queue string, logger *log.Logger) (*AMQPNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	n := &AMQPNotifier{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		queue:    queue,
		logger:   logger.WithComponent(log.ComponentNotify),
	}
	if err := n.setup(); err != nil {
		n.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return n, nil
}

func (n *AMQPNotifier) setup() error {
	if err := n.channel.ExchangeDeclare(n.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := n.channel.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := n.channel.QueueBind(n.queue, n.queue, n.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (n *AMQPNotifier) Info(ctx context.Context, msg string) {
	n.publish(ctx, LevelInfo, msg)
}

func (n *AMQPNotifier) Warn(ctx context.Context, msg string) {
	n.publish(ctx, LevelWarn, msg)
}

func (n *AMQPNotifier) publish(ctx context.Context, level, text string) {
	body, err := json.Marshal(Message{Level: level, Text: text, Timestamp: time.Now().UTC()})
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to encode notification", log.FieldError, err)
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = n.channel.PublishWithContext(publishCtx,
		n.exchange,
		n.queue, // routing key matches the bound queue
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         body,
		})
	if err != nil {
		// Fire-and-forget: the notification is lost, not the operation.
		n.logger.ErrorContext(ctx, "Failed to publish notification",
			log.FieldError, err, "level", level)
	}
}

func (n *AMQPNotifier) Close() error {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

var _ backend.Notifier = (*AMQPNotifier)(nil)
