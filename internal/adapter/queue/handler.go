package queue

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrMalformed marks a delivery that can never be processed. The router drops
// it instead of requeueing.
var ErrMalformed = errors.New("malformed message")

// Handler processes a single delivery. Return nil to ack; any other error
// nacks, with requeue controlled by the Router unless it wraps ErrMalformed.
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}
