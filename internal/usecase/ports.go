package usecase

import (
	"context"
	"time"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
)

type ProductReader interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type ProductRepo interface {
	ProductReader
	List(ctx context.Context) ([]*domain.Product, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, p *domain.Product) error
	// Update writes only the fields the patch sets, so a concurrent stock
	// decrement is never overwritten, and returns the stored row.
	Update(ctx context.Context, id string, patch domain.ProductPatch, at time.Time) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type OrderRepo interface {
	// Create inserts the order and its items and decrements stock for every
	// item in a single transaction. A short product fails the whole commit
	// with *domain.InsufficientStockError; a vanished one with ErrProductNotFound.
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type OrderStatusCache interface {
	SetStatus(ctx context.Context, orderID string, status string) error
	GetStatus(ctx context.Context, orderID string) (string, bool, error)
	Invalidate(ctx context.Context, orderID string) error
}

type EventPublisher interface {
	Notify(ctx context.Context, name notifier.EventName, payload any)
}
