// Package payment holds the simulated payment strategies used at checkout.
// No gateway is contacted; strategies only validate input and issue receipts.
package payment

import (
	"context"
	"fmt"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCash       Method = "cash"
	MethodCreditCard Method = "credit_card"
)

// Details carries method specific fields, e.g. cardNumber, cvv, expiryDate.
type Details map[string]string

type Receipt struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transaction_id"`
	Method        Method          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	Last4         string          `json:"last4,omitempty"`
}

type Strategy interface {
	Name() string
	Method() Method
	ProcessPayment(ctx context.Context, amount decimal.Decimal, details Details) (*Receipt, error)
}

// FromMethod returns the strategy configured by name.
func FromMethod(m string) (Strategy, error) {
	switch Method(m) {
	case MethodCash:
		return NewCash(), nil
	case MethodCreditCard:
		return NewCreditCard(), nil
	default:
		return nil, fmt.Errorf("unknown payment method %q", m)
	}
}

func rejected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrPaymentRejected, fmt.Sprintf(format, args...))
}

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return rejected("amount must be positive, got %s", amount.String())
	}
	return nil
}
