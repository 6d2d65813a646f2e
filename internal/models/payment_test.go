package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClientPaymentsResponse(t *testing.T) {
	t.Run("total equals sum of contained payments", func(t *testing.T) {
		resp := BuildClientPaymentsResponse("client-1", "USD", []ClientPayment{
			{ID: "p1", AmountCents: 1000, Currency: "USD"},
			{ID: "p2", AmountCents: 2500, Currency: "USD"},
		})

		assert.Equal(t, int64(3500), resp.TotalAmountPaidCents)
		assert.Equal(t, "35", resp.TotalAmountPaid.String())
		assert.Len(t, resp.Payments, 2)
	})

	t.Run("empty list yields zero total, not null payments", func(t *testing.T) {
		resp := BuildClientPaymentsResponse("client-1", "USD", nil)
		assert.Equal(t, int64(0), resp.TotalAmountPaidCents)
		assert.NotNil(t, resp.Payments)

		b, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"payments":[]`)
	})

	t.Run("derives decimal amounts on contained payments", func(t *testing.T) {
		resp := BuildClientPaymentsResponse("client-1", "USD", []ClientPayment{
			{AmountCents: 1099, Currency: "USD"},
		})
		assert.Equal(t, "10.99", resp.Payments[0].Amount.String())
	})
}

func TestClientPaymentStripeID(t *testing.T) {
	t.Run("manual payment serializes stripe_id as null", func(t *testing.T) {
		p := ClientPayment{ID: "p1", AmountCents: 1000, Currency: "USD"}
		assert.True(t, p.IsManual())

		b, err := json.Marshal(p)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"stripe_id":null`)
	})

	t.Run("gateway payment keeps its id", func(t *testing.T) {
		id := "ch_123"
		p := ClientPayment{StripeID: &id}
		assert.False(t, p.IsManual())

		b, err := json.Marshal(p)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"stripe_id":"ch_123"`)
	})
}

func TestRecordPaymentRequestValidate(t *testing.T) {
	amount := decimal.RequireFromString("35.00")
	wrongAmount := decimal.RequireFromString("35.01")
	badDate := "yesterday"
	goodDate := "2026-08-01T12:00:00Z"

	tests := []struct {
		name      string
		req       RecordPaymentRequest
		wantField string
	}{
		{
			name: "valid minimal request",
			req:  RecordPaymentRequest{AmountCents: 3500},
		},
		{
			name:      "zero amount rejected",
			req:       RecordPaymentRequest{AmountCents: 0},
			wantField: "amount_cents",
		},
		{
			name:      "negative amount rejected",
			req:       RecordPaymentRequest{AmountCents: -100},
			wantField: "amount_cents",
		},
		{
			name:      "unknown status rejected",
			req:       RecordPaymentRequest{AmountCents: 100, Status: "archived"},
			wantField: "status",
		},
		{
			name: "known status accepted",
			req:  RecordPaymentRequest{AmountCents: 100, Status: "succeeded"},
		},
		{
			name:      "unknown type rejected",
			req:       RecordPaymentRequest{AmountCents: 100, Type: "donation"},
			wantField: "type",
		},
		{
			name: "matching decimal accepted",
			req:  RecordPaymentRequest{AmountCents: 3500, Amount: &amount},
		},
		{
			name:      "mismatched decimal rejected",
			req:       RecordPaymentRequest{AmountCents: 3500, Amount: &wrongAmount},
			wantField: "amount",
		},
		{
			name:      "non RFC3339 paid_at rejected",
			req:       RecordPaymentRequest{AmountCents: 100, PaidAt: &badDate},
			wantField: "paid_at",
		},
		{
			name: "RFC3339 paid_at accepted",
			req:  RecordPaymentRequest{AmountCents: 100, PaidAt: &goodDate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.req.Validate()
			if tt.wantField == "" {
				assert.Empty(t, errs)
			} else {
				assert.Contains(t, errs, tt.wantField)
			}
		})
	}
}
