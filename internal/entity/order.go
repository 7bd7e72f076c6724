package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every accepted order status. Any status may follow any other.
var Statuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Order struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Items         []OrderItem     `json:"items"`
	Status        Status          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderItem is a line item. Price is captured when the order is placed and
// does not follow later catalog price changes.
type OrderItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CalculateTotal sums the item subtotals.
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return Invalid("order must contain at least one item")
	}
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return Invalid("quantity for product %s must be positive", it.ProductID)
		}
		if it.Price.IsNegative() {
			return ErrInvalidAmount
		}
	}
	if !o.TotalAmount.Equal(o.CalculateTotal()) {
		return ErrInvalidAmount
	}
	return nil
}
