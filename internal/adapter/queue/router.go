package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ViduraMC/Bakery-App/internal/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrConsumersStopped means every delivery channel closed while the caller
// still wanted to consume, usually because the broker dropped the channel.
var ErrConsumersStopped = errors.New("all consumers stopped")

type amqpConsumer interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Router manages multiple consumers (one per registered queue) on a single AMQP channel.
type Router struct {
	ch            amqpConsumer
	prefetch      int
	callTimeout   time.Duration
	requeueOnErr  bool
	registrations []registration
	log           *slog.Logger
}

type registration struct {
	queueName   string
	handler     Handler
	consumerTag string
}

type RouterOption func(*Router)

func WithPrefetch(n int) RouterOption          { return func(r *Router) { r.prefetch = n } }
func WithTimeout(d time.Duration) RouterOption { return func(r *Router) { r.callTimeout = d } }
func WithRequeue(b bool) RouterOption          { return func(r *Router) { r.requeueOnErr = b } }

// NewRouter constructs a Router. Defaults: prefetch=50, timeout=10s, requeueOnErr=true.
func NewRouter(ch amqpConsumer, opts ...RouterOption) *Router {
	r := &Router{
		ch:           ch,
		prefetch:     50,
		callTimeout:  10 * time.Second,
		requeueOnErr: true,
		log:          logging.New("rmq-router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register associates a queue with a handler. Call multiple times for multiple queues.
func (r *Router) Register(queueName string, h Handler) {
	r.registrations = append(r.registrations, registration{
		queueName:   queueName,
		handler:     h,
		consumerTag: "c_" + queueName,
	})
}

// Start begins consuming and blocks until ctx is done or every delivery
// channel is closed. In the latter case it returns ErrConsumersStopped.
// QoS applies to all consumers on the channel.
func (r *Router) Start(ctx context.Context) error {
	if err := r.ch.Qos(r.prefetch, 0, false); err != nil {
		return err
	}

	done := make(chan struct{}, len(r.registrations))
	for _, reg := range r.registrations {
		deliveries, err := r.ch.Consume(
			reg.queueName,
			reg.consumerTag,
			false, // manual ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return err
		}
		go func(reg registration, msgs <-chan amqp.Delivery) {
			defer func() { done <- struct{}{} }()
			r.consume(ctx, reg, msgs)
		}(reg, deliveries)
	}

	for range r.registrations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrConsumersStopped
}

func (r *Router) consume(ctx context.Context, reg registration, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				r.log.Info("consumer stopped", "queue", reg.queueName, "tag", reg.consumerTag)
				return
			}
			callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
			err := reg.handler.Handle(callCtx, d)
			cancel()

			if err != nil {
				requeue := r.requeueOnErr && !errors.Is(err, ErrMalformed)
				r.log.Error("handler error", "queue", reg.queueName, "rk", d.RoutingKey, "err", err, "requeue", requeue)
				_ = d.Nack(false, requeue)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
