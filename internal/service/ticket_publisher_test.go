package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/queue"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
	closed     int
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed++
	return nil
}

func newTestPublisher(dial func() (channel, error)) *TicketPublisher {
	logger, _ := logtest.NewNullLogger()
	return &TicketPublisher{queue: queue.TicketQueue, log: logger, dial: dial}
}

func sampleTicket() *model.Ticket {
	return &model.Ticket{
		ID: 9, Reference: "r-1", AccountID: 1, EventID: 2,
		OriginalAmountCents: 500, OrderAmountCents: 500,
		PurchasedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestTicketPublisherPublishesPersistentJSON(t *testing.T) {
	fc := &fakeChannel{}
	dials := 0
	p := newTestPublisher(func() (channel, error) { dials++; return fc, nil })

	require.NoError(t, p.TicketPurchased(context.Background(), sampleTicket()))
	require.NoError(t, p.TicketPurchased(context.Background(), sampleTicket()))

	require.Equal(t, 1, dials)
	require.Equal(t, []string{queue.TicketQueue}, fc.declared)
	require.Len(t, fc.published, 2)
	msg := fc.published[0]
	require.Equal(t, amqp.Persistent, msg.DeliveryMode)
	require.Equal(t, "application/json", msg.ContentType)
	require.Equal(t, "r-1", msg.MessageId)

	var ev queue.TicketPurchasedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &ev))
	require.Equal(t, uint64(9), ev.TicketID)
	require.Equal(t, "2026-01-02T03:04:05Z", ev.PurchasedAt)
	require.Empty(t, ev.Places)
}

func TestTicketPublisherRedialsAfterFailure(t *testing.T) {
	broken := &fakeChannel{publishErr: errors.New("connection reset")}
	healthy := &fakeChannel{}
	chans := []*fakeChannel{broken, healthy}
	p := newTestPublisher(func() (channel, error) {
		c := chans[0]
		chans = chans[1:]
		return c, nil
	})

	require.Error(t, p.TicketPurchased(context.Background(), sampleTicket()))
	require.Equal(t, 1, broken.closed)

	require.NoError(t, p.TicketPurchased(context.Background(), sampleTicket()))
	require.Len(t, healthy.published, 1)

	require.NoError(t, p.Close())
	require.Equal(t, 1, healthy.closed)
	require.NoError(t, p.Close())
}

func TestTicketPublisherDialError(t *testing.T) {
	p := newTestPublisher(func() (channel, error) { return nil, errors.New("refused") })
	require.ErrorContains(t, p.TicketPurchased(context.Background(), sampleTicket()), "refused")
}
