package usecase

import (
	"context"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/logging"
)

// OrderQueries serves the read side. The status cache is optional.
type OrderQueries struct {
	orders OrderRepo
	cache  OrderStatusCache
}

func NewOrderQueries(orders OrderRepo, cache OrderStatusCache) *OrderQueries {
	return &OrderQueries{orders: orders, cache: cache}
}

// ListOrders returns every order, newest first, items in placement order.
func (q *OrderQueries) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return q.orders.List(ctx)
}

func (q *OrderQueries) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return q.orders.GetByID(ctx, id)
}

// GetOrderStatus reads the cache and falls back to the store. A miss is not
// written back: the cache is filled only from status events, so a read racing
// a status change can never park an old value in it.
func (q *OrderQueries) GetOrderStatus(ctx context.Context, id string) (*StatusChange, error) {
	if q.cache != nil {
		s, ok, err := q.cache.GetStatus(ctx, id)
		if err != nil {
			logging.FromCtx(ctx).Warn("status cache read failed", "order_id", id, "err", err)
		}
		if ok {
			return &StatusChange{ID: id, Status: domain.Status(s)}, nil
		}
	}
	o, err := q.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StatusChange{ID: o.ID, Status: o.Status}, nil
}
