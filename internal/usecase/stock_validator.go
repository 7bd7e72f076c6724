package usecase

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
)

type LineRequest struct {
	ProductID string
	Quantity  int
}

// StockValidator checks a whole basket against the catalog without mutating it.
type StockValidator struct {
	products ProductReader
}

func NewStockValidator(products ProductReader) *StockValidator {
	return &StockValidator{products: products}
}

// Validate resolves every product and compares the requested quantity (summed
// per product) against stock on hand. The returned map is keyed by product id.
func (v *StockValidator) Validate(ctx context.Context, lines []LineRequest) (map[string]*domain.Product, error) {
	requested := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, seen := requested[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		requested[l.ProductID] += l.Quantity
	}

	found := make(map[string]*domain.Product, len(order))
	for _, id := range order {
		p, err := v.products.GetByID(ctx, id)
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("lookup product %s: %w", id, err)
		}
		if p.Quantity < requested[id] {
			return nil, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   requested[id],
				Available:   p.Quantity,
			}
		}
		found[id] = p
	}
	return found, nil
}
