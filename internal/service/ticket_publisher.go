// Package service holds adapters that let the booking engine talk to
// the outside world after a purchase commits.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticket-booking/internal/config"
	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/queue"
)

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// TicketPublisher publishes TicketPurchasedEvent messages to RabbitMQ.
// The connection is opened lazily and reopened after a failed publish.
type TicketPublisher struct {
	queue string
	log   logrus.FieldLogger
	dial  func() (channel, error)

	mu sync.Mutex
	ch channel
}

// NewTicketPublisher returns a publisher for cfg.Queue on cfg.URL.
func NewTicketPublisher(cfg config.QueueConfig, log logrus.FieldLogger) *TicketPublisher {
	return &TicketPublisher{
		queue: cfg.Queue,
		log:   log,
		dial:  func() (channel, error) { return dialChannel(cfg.URL) },
	}
}

// TicketPurchased implements booking.Notifier.  Errors are logged and
// returned so the caller can choose to ignore them.
func (p *TicketPublisher) TicketPurchased(ctx context.Context, t *model.Ticket) error {
	body, err := json.Marshal(queue.NewTicketPurchasedEvent(t))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    t.Reference,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: connect failed")
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.log.WithError(err).WithField("reference", t.Reference).Warn("rabbitmq: publish failed")
		_ = ch.Close()
		p.ch = nil
		return err
	}
	return nil
}

// Close releases the broker connection, if one is open.
func (p *TicketPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}

// channel must be called with p.mu held.
func (p *TicketPublisher) channel() (channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	ch, err := p.dial()
	if err != nil {
		return nil, err
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.ch = ch
	return ch, nil
}

type amqpChannel struct {
	*amqp.Channel
	conn *amqp.Connection
}

func (c amqpChannel) Close() error {
	_ = c.Channel.Close()
	return c.conn.Close()
}

func dialChannel(url string) (channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	return amqpChannel{Channel: ch, conn: conn}, nil
}
