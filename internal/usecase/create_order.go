package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/ViduraMC/Bakery-App/internal/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrDuplicate = errors.New("duplicate idempotency key")

type CreateOrderItem struct {
	ProductID string
	Quantity  int
	// Price is what the client saw; the catalog price is what gets captured.
	Price *decimal.Decimal
}

type CreateOrderInput struct {
	CustomerName   string
	CustomerEmail  string
	IdempotencyKey string
	Items          []CreateOrderItem
	// TotalAmount is informational; the ledger always recomputes it.
	TotalAmount    *decimal.Decimal
	PaymentDetails payment.Details
}

// OrderLedger places orders and changes their status.
type OrderLedger struct {
	orders    OrderRepo
	validator *StockValidator
	events    EventPublisher
	idem      IdempotencyStore
	cache     OrderStatusCache
	now       func() time.Time

	mu       sync.RWMutex
	strategy payment.Strategy
}

type LedgerOption func(*OrderLedger)

func WithIdempotency(s IdempotencyStore) LedgerOption {
	return func(l *OrderLedger) { l.idem = s }
}

// WithStatusCache makes status changes evict the cached status of the order.
func WithStatusCache(c OrderStatusCache) LedgerOption {
	return func(l *OrderLedger) { l.cache = c }
}

func WithClock(now func() time.Time) LedgerOption {
	return func(l *OrderLedger) { l.now = now }
}

func NewOrderLedger(orders OrderRepo, products ProductReader, strategy payment.Strategy, events EventPublisher, opts ...LedgerOption) *OrderLedger {
	l := &OrderLedger{
		orders:    orders,
		validator: NewStockValidator(products),
		events:    events,
		strategy:  strategy,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetPaymentStrategy swaps the strategy used by every subsequent order.
func (l *OrderLedger) SetPaymentStrategy(s payment.Strategy) {
	l.mu.Lock()
	l.strategy = s
	l.mu.Unlock()
}

func (l *OrderLedger) PaymentStrategy() payment.Strategy {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.strategy
}

func (l *OrderLedger) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	scope := strings.ToLower(in.CustomerEmail)
	useIdem := l.idem != nil && in.IdempotencyKey != ""
	if useIdem {
		// Fast path: idempotency recall
		if id, ok, _ := l.idem.Recall(ctx, scope, in.IdempotencyKey); ok {
			return l.orders.GetByID(ctx, id)
		}
		ok, err := l.idem.TryLock(ctx, scope, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDuplicate
		}
	}

	order, err := l.place(ctx, in)
	if err != nil {
		if useIdem {
			_ = l.idem.Release(ctx, scope, in.IdempotencyKey)
		}
		return nil, err
	}

	if useIdem {
		// the order is committed either way; a retry with this key now sees
		// the held lock and gets ErrDuplicate rather than a second order
		if err := l.idem.Remember(ctx, scope, in.IdempotencyKey, order.ID); err != nil {
			logging.FromCtx(ctx).Warn("idempotency key not remembered",
				"order_id", order.ID, "key", in.IdempotencyKey, "err", err)
		}
	}

	l.events.Notify(ctx, notifier.OrderCreated, OrderCreatedEvent{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.TotalAmount,
		Items:         order.Items,
	})
	return order, nil
}

func (l *OrderLedger) place(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	log := logging.FromCtx(ctx).With("module", "ledger")

	lines := make([]LineRequest, len(in.Items))
	for i, it := range in.Items {
		lines[i] = LineRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	products, err := l.validator.Validate(ctx, lines)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:            uuid.NewString(),
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Status:        domain.StatusPending,
		CreatedAt:     l.now().UTC(),
		Items:         make([]domain.OrderItem, len(in.Items)),
	}
	for i, it := range in.Items {
		p := products[it.ProductID]
		if it.Price != nil && !it.Price.Equal(p.Price) {
			log.Warn("client price differs from catalog",
				"product_id", p.ID, "client", it.Price.String(), "catalog", p.Price.String())
		}
		order.Items[i] = domain.OrderItem{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Quantity:  it.Quantity,
			Price:     p.Price,
		}
	}
	order.TotalAmount = order.CalculateTotal()
	if in.TotalAmount != nil && !in.TotalAmount.Equal(order.TotalAmount) {
		log.Warn("client total ignored",
			"client", in.TotalAmount.String(), "computed", order.TotalAmount.String())
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	receipt, err := l.pay(ctx, order.TotalAmount, in.PaymentDetails)
	if err != nil {
		return nil, err
	}

	if err := l.orders.Create(ctx, order); err != nil {
		txID := ""
		if receipt != nil {
			txID = receipt.TransactionID
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			log.Warn("stock taken by a concurrent order, payment needs refund",
				"order_id", order.ID, "transaction_id", txID, "err", err)
			return nil, err
		}
		log.Error("order commit failed after payment, needs reconciliation",
			"order_id", order.ID, "transaction_id", txID, "err", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrOrderCommitFailed, err)
	}

	attrs := []any{"order_id", order.ID, "total", order.TotalAmount.StringFixed(2), "items", len(order.Items)}
	if receipt != nil {
		attrs = append(attrs, "transaction_id", receipt.TransactionID, "method", string(receipt.Method))
	}
	log.Info("order committed", attrs...)
	return order, nil
}

func (l *OrderLedger) pay(ctx context.Context, amount decimal.Decimal, details payment.Details) (*payment.Receipt, error) {
	strategy := l.PaymentStrategy()
	if strategy == nil {
		return nil, nil
	}
	receipt, err := strategy.ProcessPayment(ctx, amount, details)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentRejected) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrPaymentRejected, err)
	}
	if receipt == nil || !receipt.Success {
		return nil, fmt.Errorf("%w: %s declined", domain.ErrPaymentRejected, strategy.Name())
	}
	return receipt, nil
}

func validateCreateInput(in CreateOrderInput) error {
	if in.CustomerName == "" {
		return domain.Invalid("customer_name is required")
	}
	if _, err := mail.ParseAddress(in.CustomerEmail); err != nil {
		return domain.Invalid("customer_email is not a valid address")
	}
	if len(in.Items) == 0 {
		return domain.Invalid("order must contain at least one item")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.Invalid("product_id is required")
		}
		if it.Quantity <= 0 {
			return domain.Invalid("quantity for product %s must be positive", it.ProductID)
		}
	}
	return nil
}
