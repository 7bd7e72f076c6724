package subscriber

import (
	"context"
	"log/slog"

	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
)

// Notification writes the customer-facing confirmation to the log. Delivery to
// a mail or SMS service happens downstream of the order-events exchange.
type Notification struct {
	log *slog.Logger
}

func NewNotification() *Notification {
	return &Notification{log: logging.New("notification")}
}

func (s *Notification) Name() string { return "notification" }

func (s *Notification) Update(_ context.Context, ev notifier.Event) error {
	switch p := ev.Payload.(type) {
	case usecase.OrderCreatedEvent:
		s.log.Info("sending order confirmation",
			"order_id", p.OrderID, "email", p.CustomerEmail, "total", p.TotalAmount.StringFixed(2))
	case usecase.OrderStatusUpdatedEvent:
		s.log.Info("order status changed", "order_id", p.OrderID, "status", string(p.NewStatus))
	default:
		return errUnexpectedPayload(ev)
	}
	return nil
}
