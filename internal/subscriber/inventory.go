package subscriber

import (
	"context"
	"log/slog"

	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
)

// Inventory reports the stock left after each order and flags products at or
// below the low-stock threshold.
type Inventory struct {
	products  usecase.ProductReader
	threshold int
	log       *slog.Logger
}

func NewInventory(products usecase.ProductReader, threshold int) *Inventory {
	return &Inventory{products: products, threshold: threshold, log: logging.New("inventory")}
}

func (s *Inventory) Name() string { return "inventory" }

func (s *Inventory) Update(ctx context.Context, ev notifier.Event) error {
	if ev.Name != notifier.OrderCreated {
		return nil
	}
	created, ok := ev.Payload.(usecase.OrderCreatedEvent)
	if !ok {
		return errUnexpectedPayload(ev)
	}
	s.log.Info("stock reduced for order", "order_id", created.OrderID)

	seen := make(map[string]bool, len(created.Items))
	for _, it := range created.Items {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true

		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return err
		}
		if p.Quantity <= s.threshold {
			s.log.Warn("low stock", "product_id", p.ID, "name", p.Name, "quantity", p.Quantity, "threshold", s.threshold)
		}
	}
	return nil
}
