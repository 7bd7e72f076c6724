package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
)

// HandlerFunc processes a decoded status message.
type HandlerFunc func(ctx context.Context, ev usecase.OrderStatusChangedMsg) error

// Consumer feeds one topic's status messages to a single handler.
type Consumer struct {
	Group  sarama.ConsumerGroup
	Topics []string
	Handle HandlerFunc
	Logger *slog.Logger

	// A failing message is retried MaxAttempts times, Backoff doubling each
	// time, before the session is ended so it is redelivered.
	MaxAttempts int
	Backoff     time.Duration
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, h HandlerFunc) *Consumer {
	return &Consumer{
		Group:       group,
		Topics:      topics,
		Handle:      h,
		Logger:      logging.New("kafka-consumer"),
		MaxAttempts: 3,
		Backoff:     200 * time.Millisecond,
	}
}

// Start blocks until ctx is done. A handler that gives up ends the current
// session; the group is rejoined and consumption resumes at the last commit.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &cgHandler{
		handle:      c.Handle,
		logger:      c.Logger,
		maxAttempts: c.MaxAttempts,
		backoff:     c.Backoff,
	}
	for {
		err := c.Group.Consume(ctx, c.Topics, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			c.Logger.Error("consumer session ended", "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.Backoff):
			}
		}
	}
}

type cgHandler struct {
	handle      HandlerFunc
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration
}

func (h *cgHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cgHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cgHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		l := h.logger.With("topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)

		var ev usecase.OrderStatusChangedMsg
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			l.Warn("kafka decode error", "err", err)
			// mark to avoid reprocessing poison
			sess.MarkMessage(msg, "decode-error")
			continue
		}

		ctx := logging.WithCtx(sess.Context(), l.With("order_id", ev.OrderID))
		if err := h.handleWithRetry(ctx, ev); err != nil {
			// later offsets stay unmarked so this one is not skipped
			return fmt.Errorf("offset %d: %w", msg.Offset, err)
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}

func (h *cgHandler) handleWithRetry(ctx context.Context, ev usecase.OrderStatusChangedMsg) error {
	attempts := max(h.maxAttempts, 1)
	wait := h.backoff
	var err error
	for i := 1; i <= attempts; i++ {
		if err = h.handle(ctx, ev); err == nil {
			return nil
		}
		logging.FromCtx(ctx).Warn("status handler failed", "attempt", i, "err", err)
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}
