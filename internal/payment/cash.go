package payment

import (
	"context"

	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cash struct{}

func NewCash() *Cash { return &Cash{} }

func (c *Cash) Name() string   { return "Cash" }
func (c *Cash) Method() Method { return MethodCash }

func (c *Cash) ProcessPayment(ctx context.Context, amount decimal.Decimal, _ Details) (*Receipt, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	logging.FromCtx(ctx).Info("processing cash payment", "amount", amount.StringFixed(2))
	return &Receipt{
		Success:       true,
		TransactionID: "CASH-" + uuid.NewString(),
		Method:        MethodCash,
		Amount:        amount,
	}, nil
}
