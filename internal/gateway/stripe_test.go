package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v81"
)

func TestMapChargeStatus(t *testing.T) {
	tests := []struct {
		name   string
		charge *stripe.Charge
		want   string
	}{
		{
			name:   "succeeded",
			charge: &stripe.Charge{Status: stripe.ChargeStatusSucceeded},
			want:   "succeeded",
		},
		{
			name:   "pending",
			charge: &stripe.Charge{Status: stripe.ChargeStatusPending},
			want:   "pending",
		},
		{
			name:   "failed",
			charge: &stripe.Charge{Status: stripe.ChargeStatusFailed},
			want:   "failed",
		},
		{
			name:   "refund wins over succeeded",
			charge: &stripe.Charge{Status: stripe.ChargeStatusSucceeded, Refunded: true},
			want:   "refunded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapChargeStatus(tt.charge))
		})
	}
}

func TestFromCharge(t *testing.T) {
	ch := &stripe.Charge{
		ID:          "ch_123",
		Amount:      3500,
		Currency:    stripe.CurrencyUSD,
		Status:      stripe.ChargeStatusSucceeded,
		Created:     1756100000,
		Description: "Monthly coaching",
		Invoice:     &stripe.Invoice{ID: "in_456"},
	}

	p := fromCharge(ch)
	assert.Equal(t, "ch_123", p.ProviderID)
	assert.Equal(t, int64(3500), p.AmountCents)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "succeeded", p.Status)
	assert.Equal(t, "Monthly coaching", *p.Description)
	assert.Equal(t, "in_456", *p.InvoiceID)
	assert.Nil(t, p.PaymentMethod)
}
