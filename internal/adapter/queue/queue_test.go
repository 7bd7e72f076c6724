package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	mu   sync.Mutex
	pubs []published
	err  error

	deliveries chan amqp.Delivery
	prefetch   int
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.pubs = append(f.pubs, published{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Qos(n, _ int, _ bool) error {
	f.prefetch = n
	return nil
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

type ackRecorder struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue []bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(uint64, bool) error { return nil }

func createdEvent() usecase.OrderCreatedEvent {
	return usecase.OrderCreatedEvent{
		OrderID:       "o-1",
		CustomerEmail: "ada@example.com",
		TotalAmount:   decimal.RequireFromString("7.00"),
		Items:         []domain.OrderItem{{ID: "i-1", ProductID: "p-1", Quantity: 2, Price: decimal.RequireFromString("3.50")}},
	}
}

func TestRabbitPublisher_RoutesByEvent(t *testing.T) {
	ch := &fakeChannel{}
	p := newRabbitPublisher(ch, "bakery.orders")

	require.NoError(t, p.Update(context.Background(), notifier.Event{Name: notifier.OrderCreated, Payload: createdEvent()}))
	require.NoError(t, p.Update(context.Background(), notifier.Event{
		Name:    notifier.OrderStatusUpdated,
		Payload: usecase.OrderStatusUpdatedEvent{OrderID: "o-1", NewStatus: domain.StatusCompleted},
	}))
	require.NoError(t, p.Update(context.Background(), notifier.Event{Name: "SOMETHING_ELSE"}))

	require.Len(t, ch.pubs, 2)
	assert.Equal(t, "bakery.orders", ch.pubs[0].exchange)
	assert.Equal(t, RoutingKeyCreated, ch.pubs[0].key)
	assert.Equal(t, RoutingKeyStatusUpdated, ch.pubs[1].key)
	assert.Equal(t, amqp.Persistent, ch.pubs[0].msg.DeliveryMode)

	var env Envelope
	require.NoError(t, json.Unmarshal(ch.pubs[0].msg.Body, &env))
	assert.Equal(t, notifier.OrderCreated, env.Event)
	var got usecase.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "o-1", got.OrderID)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(7)))
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newRabbitPublisher(ch, "bakery.orders")
	err := p.Update(context.Background(), notifier.Event{Name: notifier.OrderCreated, Payload: createdEvent()})
	assert.Error(t, err)
}

func TestRouter_AckNackAndPoison(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery, 4)}
	acks := &ackRecorder{}

	var handled []string
	h := JSONHandler[Envelope]{HandleFunc: func(_ context.Context, env Envelope) error {
		handled = append(handled, string(env.Event))
		if env.Event == "FAIL" {
			return errors.New("downstream busy")
		}
		return nil
	}}

	r := NewRouter(ch, WithPrefetch(5), WithTimeout(time.Second))
	r.Register("bakery.notifications.q", h)

	ch.deliveries <- amqp.Delivery{Acknowledger: acks, Body: []byte(`{"event":"ORDER_CREATED","data":{}}`)}
	ch.deliveries <- amqp.Delivery{Acknowledger: acks, Body: []byte(`{"event":"FAIL","data":{}}`)}
	ch.deliveries <- amqp.Delivery{Acknowledger: acks, Body: []byte(`not json`)}
	close(ch.deliveries)

	// the channel closing under a live context surfaces as an error
	assert.ErrorIs(t, r.Start(context.Background()), ErrConsumersStopped)

	assert.Equal(t, 5, ch.prefetch)
	assert.Equal(t, []string{"ORDER_CREATED", "FAIL"}, handled)
	assert.Equal(t, 1, acks.acks)
	assert.Equal(t, 2, acks.nacks)
	assert.Equal(t, []bool{true, false}, acks.requeue)
}

func TestRouter_StopsOnContext(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery)}
	r := NewRouter(ch)
	r.Register("q", JSONHandler[Envelope]{HandleFunc: func(context.Context, Envelope) error { return nil }})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Start(ctx), context.Canceled)
}

func TestRouter_ClosedChannelIsReported(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery)}
	r := NewRouter(ch)
	r.Register("q", JSONHandler[Envelope]{HandleFunc: func(context.Context, Envelope) error { return nil }})

	errc := make(chan error, 1)
	go func() { errc <- r.Start(context.Background()) }()
	close(ch.deliveries)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrConsumersStopped)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after the delivery channel closed")
	}
}

func TestNotificationHandler(t *testing.T) {
	h := NewNotificationHandler()
	data, err := json.Marshal(createdEvent())
	require.NoError(t, err)

	assert.NoError(t, h.HandleEnvelope(context.Background(), Envelope{Event: notifier.OrderCreated, Data: data}))
	assert.NoError(t, h.HandleEnvelope(context.Background(), Envelope{Event: "UNKNOWN"}))
	err = h.HandleEnvelope(context.Background(), Envelope{Event: notifier.OrderStatusUpdated, Data: []byte(`[`)})
	assert.ErrorIs(t, err, ErrMalformed)
}
