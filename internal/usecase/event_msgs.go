package usecase

import (
	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/shopspring/decimal"
)

// Published as notifier.OrderCreated after a successful commit.
type OrderCreatedEvent struct {
	OrderID       string             `json:"orderId"`
	CustomerEmail string             `json:"customerEmail"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	Items         []domain.OrderItem `json:"items"`
}

// Published as notifier.OrderStatusUpdated after every status write.
type OrderStatusUpdatedEvent struct {
	OrderID   string        `json:"orderId"`
	NewStatus domain.Status `json:"newStatus"`
}

// Sent by the fulfilment side on Kafka
type OrderStatusChangedMsg struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"` // e.g. "completed"
}
