package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// JSONHandler decodes d.Body into T and calls HandleFunc. Bodies that are not
// valid JSON for T are reported as ErrMalformed.
type JSONHandler[T any] struct {
	HandleFunc func(ctx context.Context, msg T) error
}

func (h JSONHandler[T]) Handle(ctx context.Context, d amqp.Delivery) error {
	if d.ContentType != "" && d.ContentType != "application/json" {
		return fmt.Errorf("%w: content type %q", ErrMalformed, d.ContentType)
	}
	var v T
	if err := json.Unmarshal(d.Body, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return h.HandleFunc(ctx, v)
}
