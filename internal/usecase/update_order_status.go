package usecase

import (
	"context"
	"strings"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
)

type StatusChange struct {
	ID     string        `json:"id"`
	Status domain.Status `json:"status"`
}

// UpdateOrderStatus overwrites the status of an existing order. Any valid status
// may follow any other, and setting the current status again still notifies.
func (l *OrderLedger) UpdateOrderStatus(ctx context.Context, id string, status string) (*StatusChange, error) {
	s := domain.Status(strings.ToLower(strings.TrimSpace(status)))
	if !s.Valid() {
		return nil, domain.Invalid("invalid status %q", status)
	}
	if err := l.orders.UpdateStatus(ctx, id, s); err != nil {
		return nil, err
	}

	log := logging.FromCtx(ctx)
	// drop the cached value before notifying; if the cache subscriber then
	// fails, readers fall through to the store instead of the old status
	if l.cache != nil {
		if err := l.cache.Invalidate(ctx, id); err != nil {
			log.Warn("status cache invalidate failed", "order_id", id, "err", err)
		}
	}

	log.Info("order status updated", "order_id", id, "status", string(s))
	l.events.Notify(ctx, notifier.OrderStatusUpdated, OrderStatusUpdatedEvent{OrderID: id, NewStatus: s})
	return &StatusChange{ID: id, Status: s}, nil
}
