package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCard() *CreditCard {
	return &CreditCard{now: func() time.Time {
		return time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	}}
}

func validCard() Details {
	return Details{FieldCardNumber: "4242 4242 4242 4242", FieldCVV: "123", FieldExpiry: "12/28"}
}

func TestCash(t *testing.T) {
	r, err := NewCash().ProcessPayment(context.Background(), decimal.RequireFromString("7.00"), nil)
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.Equal(t, MethodCash, r.Method)
	assert.True(t, strings.HasPrefix(r.TransactionID, "CASH-"))
	assert.True(t, r.Amount.Equal(decimal.NewFromInt(7)))
}

func TestCash_RejectsNonPositiveAmount(t *testing.T) {
	_, err := NewCash().ProcessPayment(context.Background(), decimal.Zero, nil)
	assert.ErrorIs(t, err, domain.ErrPaymentRejected)
}

func TestCreditCard_OK(t *testing.T) {
	r, err := fixedCard().ProcessPayment(context.Background(), decimal.RequireFromString("12.99"), validCard())
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.Equal(t, MethodCreditCard, r.Method)
	assert.Equal(t, "4242", r.Last4)
	assert.True(t, strings.HasPrefix(r.TransactionID, "CC-"))
}

func TestCreditCard_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d Details)
	}{
		{"missing cvv", func(d Details) { delete(d, FieldCVV) }},
		{"missing number", func(d Details) { d[FieldCardNumber] = "" }},
		{"missing expiry", func(d Details) { delete(d, FieldExpiry) }},
		{"bad luhn", func(d Details) { d[FieldCardNumber] = "4242424242424241" }},
		{"letters in number", func(d Details) { d[FieldCardNumber] = "4242abcd42424242" }},
		{"short number", func(d Details) { d[FieldCardNumber] = "4242" }},
		{"long cvv", func(d Details) { d[FieldCVV] = "12345" }},
		{"expired", func(d Details) { d[FieldExpiry] = "09/26" }},
		{"bad month", func(d Details) { d[FieldExpiry] = "13/30" }},
		{"no slash", func(d Details) { d[FieldExpiry] = "1230" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validCard()
			tt.mutate(d)
			_, err := fixedCard().ProcessPayment(context.Background(), decimal.NewFromInt(5), d)
			assert.ErrorIs(t, err, domain.ErrPaymentRejected)
		})
	}
}

func TestCreditCard_ExpiryMonthInclusive(t *testing.T) {
	d := validCard()
	d[FieldExpiry] = "10/2026"
	_, err := fixedCard().ProcessPayment(context.Background(), decimal.NewFromInt(5), d)
	assert.NoError(t, err)
}

func TestFromMethod(t *testing.T) {
	s, err := FromMethod("credit_card")
	require.NoError(t, err)
	assert.Equal(t, MethodCreditCard, s.Method())

	s, err = FromMethod("cash")
	require.NoError(t, err)
	assert.Equal(t, "Cash", s.Name())

	_, err = FromMethod("iou")
	assert.Error(t, err)
}
