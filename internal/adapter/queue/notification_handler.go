package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
)

// NotificationHandler drains the notification queue and hands each message to
// the customer-facing channel. Here that channel is the structured log.
type NotificationHandler struct {
	log *slog.Logger
}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{log: logging.New("notification-consumer")}
}

// HandleEnvelope is meant for queue.JSONHandler[Envelope].
func (h *NotificationHandler) HandleEnvelope(_ context.Context, env Envelope) error {
	switch env.Event {
	case notifier.OrderCreated:
		var ev usecase.OrderCreatedEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrMalformed, env.Event, err)
		}
		h.log.Info("order confirmation dispatched",
			"order_id", ev.OrderID, "email", ev.CustomerEmail, "total", ev.TotalAmount.StringFixed(2), "items", len(ev.Items))
	case notifier.OrderStatusUpdated:
		var ev usecase.OrderStatusUpdatedEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrMalformed, env.Event, err)
		}
		h.log.Info("status notice dispatched", "order_id", ev.OrderID, "status", string(ev.NewStatus))
	default:
		// unknown events are acked and dropped so they do not loop
		h.log.Warn("unknown event", "event", string(env.Event))
	}
	return nil
}
