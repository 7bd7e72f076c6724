package subscriber

import (
	"context"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
)

// StatusCache keeps the order status cache in step with every lifecycle event.
type StatusCache struct {
	cache usecase.OrderStatusCache
}

func NewStatusCache(cache usecase.OrderStatusCache) *StatusCache {
	return &StatusCache{cache: cache}
}

func (s *StatusCache) Name() string { return "status-cache" }

func (s *StatusCache) Update(ctx context.Context, ev notifier.Event) error {
	switch p := ev.Payload.(type) {
	case usecase.OrderCreatedEvent:
		return s.cache.SetStatus(ctx, p.OrderID, string(domain.StatusPending))
	case usecase.OrderStatusUpdatedEvent:
		return s.cache.SetStatus(ctx, p.OrderID, string(p.NewStatus))
	default:
		return errUnexpectedPayload(ev)
	}
}
