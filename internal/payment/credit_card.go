package payment

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	FieldCardNumber = "cardNumber"
	FieldCVV        = "cvv"
	FieldExpiry     = "expiryDate"
)

type CreditCard struct {
	now func() time.Time
}

func NewCreditCard() *CreditCard { return &CreditCard{now: time.Now} }

func (c *CreditCard) Name() string   { return "Credit Card" }
func (c *CreditCard) Method() Method { return MethodCreditCard }

func (c *CreditCard) ProcessPayment(ctx context.Context, amount decimal.Decimal, details Details) (*Receipt, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}

	number := strings.NewReplacer(" ", "", "-", "").Replace(details[FieldCardNumber])
	cvv := strings.TrimSpace(details[FieldCVV])
	expiry := strings.TrimSpace(details[FieldExpiry])
	if number == "" || cvv == "" || expiry == "" {
		return nil, rejected("invalid credit card details: cardNumber, cvv and expiryDate are required")
	}
	if len(number) < 13 || len(number) > 19 || !allDigits(number) || !luhn(number) {
		return nil, rejected("invalid card number")
	}
	if (len(cvv) != 3 && len(cvv) != 4) || !allDigits(cvv) {
		return nil, rejected("invalid cvv")
	}
	if err := c.checkExpiry(expiry); err != nil {
		return nil, err
	}

	last4 := number[len(number)-4:]
	logging.FromCtx(ctx).Info("processing credit card payment",
		"amount", amount.StringFixed(2),
		"last4", last4,
	)
	return &Receipt{
		Success:       true,
		TransactionID: "CC-" + uuid.NewString(),
		Method:        MethodCreditCard,
		Amount:        amount,
		Last4:         last4,
	}, nil
}

// checkExpiry accepts MM/YY or MM/YYYY. A card is valid through the last day of its month.
func (c *CreditCard) checkExpiry(s string) error {
	month, year, ok := strings.Cut(s, "/")
	if !ok {
		return rejected("invalid expiry date %q", s)
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return rejected("invalid expiry month %q", month)
	}
	year = strings.TrimSpace(year)
	y, err := strconv.Atoi(year)
	if err != nil || (len(year) != 2 && len(year) != 4) {
		return rejected("invalid expiry year %q", year)
	}
	if len(year) == 2 {
		y += 2000
	}
	firstOfNext := time.Date(y, time.Month(m)+1, 1, 0, 0, 0, 0, time.UTC)
	if !c.now().UTC().Before(firstOfNext) {
		return rejected("card expired")
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func luhn(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
