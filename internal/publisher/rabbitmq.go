// Package publisher announces created articles and collection reports on a
// RabbitMQ exchange.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"corpora/internal/domain"
)

type Config struct {
	URL              string
	Exchange         string
	RoutingKey       string
	QueueName        string
	NotifyRoutingKey string
	NotifyQueue      string
	// Recipients are copied into every notification.
	Recipients []string
}

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     Config
	logger  *slog.Logger

	// Publishing on one channel from several goroutines interleaves frames.
	mu sync.Mutex
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	for _, b := range []struct{ queue, key string }{
		{cfg.QueueName, cfg.RoutingKey},
		{cfg.NotifyQueue, cfg.NotifyRoutingKey},
	} {
		if b.queue == "" {
			continue
		}
		if err := bindQueue(ch, cfg.Exchange, b.queue, b.key); err != nil {
			ch.Close()
			conn.Close()
			return nil, err
		}
	}

	logger = logger.With("component", "publisher")
	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
		"notify_queue", cfg.NotifyQueue,
	)

	return &RabbitMQ{
		conn:    conn,
		channel: ch,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func bindQueue(ch *amqp.Channel, exchange, queue, key string) error {
	q, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	return nil
}

type ArticleMessage struct {
	Action    string         `json:"action"`
	Article   domain.Article `json:"article"`
	Timestamp time.Time      `json:"timestamp"`
}

// NotificationMessage is consumed by the mailer.
type NotificationMessage struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Recipients []string  `json:"recipients"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publish announces a newly created article.
func (r *RabbitMQ) Publish(ctx context.Context, article *domain.Article) error {
	msg := ArticleMessage{
		Action:    "create",
		Article:   *article,
		Timestamp: time.Now().UTC(),
	}

	if err := r.publish(ctx, r.cfg.RoutingKey, "", msg); err != nil {
		return err
	}

	r.logger.Debug("published article", "id", article.ID, "url", article.ExtURL)
	return nil
}

// Notify queues a notification for the configured recipients.
func (r *RabbitMQ) Notify(ctx context.Context, subject, body string) error {
	msg := NotificationMessage{
		ID:         uuid.NewString(),
		Subject:    subject,
		Body:       body,
		Recipients: r.cfg.Recipients,
		Timestamp:  time.Now().UTC(),
	}

	if err := r.publish(ctx, r.cfg.NotifyRoutingKey, msg.ID, msg); err != nil {
		return err
	}

	r.logger.Info("notification sent", "id", msg.ID, "subject", subject, "recipients", len(msg.Recipients))
	return nil
}

func (r *RabbitMQ) publish(ctx context.Context, routingKey, messageID string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.PublishWithContext(
		ctx,
		r.cfg.Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    messageID,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
