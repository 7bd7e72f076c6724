package kafka

import (
	"context"
	"errors"
	"log/slog"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
)

type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, id string, status string) (*usecase.StatusChange, error)
}

// OrderStatusChangedHandler applies status changes reported by fulfilment
// through the same path as the HTTP endpoint, so subscribers are notified.
type OrderStatusChangedHandler struct {
	Orders StatusUpdater
	log    *slog.Logger
}

func NewOrderStatusChangedHandler(orders StatusUpdater) *OrderStatusChangedHandler {
	return &OrderStatusChangedHandler{Orders: orders, log: logging.New("kafka-status")}
}

// Handle drops messages that can never succeed (unknown order, bad status) and
// returns every other error so the message is retried.
func (h *OrderStatusChangedHandler) Handle(ctx context.Context, ev usecase.OrderStatusChangedMsg) error {
	if ev.OrderID == "" {
		h.log.Warn("status message without order id dropped", "status", ev.Status)
		return nil
	}
	_, err := h.Orders.UpdateOrderStatus(ctx, ev.OrderID, ev.Status)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrValidation):
		h.log.Warn("status message dropped", "order_id", ev.OrderID, "status", ev.Status, "err", err)
		return nil
	default:
		return err
	}
}
