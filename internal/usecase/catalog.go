package usecase

import (
	"context"
	"strings"
	"time"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/google/uuid"
)

// Catalog is the product CRUD surface. Stock for orders is only ever
// decremented through OrderRepo.Create.
type Catalog struct {
	products ProductRepo
	now      func() time.Time
}

func NewCatalog(products ProductRepo) *Catalog {
	return &Catalog{products: products, now: time.Now}
}

func (c *Catalog) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return c.products.List(ctx)
}

func (c *Catalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return c.products.GetByID(ctx, id)
}

func (c *Catalog) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := c.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := c.products.Create(ctx, &p); err != nil {
		return nil, err
	}
	logging.FromCtx(ctx).Info("product created", "product_id", p.ID, "name", p.Name)
	return &p, nil
}

func (c *Catalog) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	p, err := c.products.Update(ctx, id, patch, c.now().UTC())
	if err != nil {
		return nil, err
	}
	logging.FromCtx(ctx).Info("product updated", "product_id", p.ID)
	return p, nil
}

func (c *Catalog) DeleteProduct(ctx context.Context, id string) error {
	if err := c.products.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromCtx(ctx).Info("product deleted", "product_id", id)
	return nil
}

// SeedIfEmpty inserts the given products only into an empty catalog.
// It reports how many were inserted.
func (c *Catalog) SeedIfEmpty(ctx context.Context, products []domain.Product) (int, error) {
	n, err := c.products.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for _, p := range products {
		if _, err := c.CreateProduct(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(products), nil
}
