package models

import (
	"time"

	"github.com/shopspring/decimal"

	"sweepos-backend/internal/money"
)

// ── Payment Status ───────────────────────────────────────────────

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// ValidPaymentStatuses lists the accepted payment statuses.
var ValidPaymentStatuses = map[string]bool{
	PaymentStatusPending:   true,
	PaymentStatusSucceeded: true,
	PaymentStatusFailed:    true,
	PaymentStatusRefunded:  true,
}

// ── ClientPayment ────────────────────────────────────────────────

// ClientPayment is one payment event tied to a client.
// AmountCents is the source of truth; Amount is a derived display value
// and the two must agree under the currency's minor-unit convention.
// StripeID is nil for manual (non-gateway) payments.
type ClientPayment struct {
	ID             string          `json:"id"`
	ClientID       string          `json:"client_id"`
	OrganizationID string          `json:"organization_id"`
	AmountCents    int64           `json:"amount_cents"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	Type           string          `json:"type"` // "subscription" | "one_time"
	Description    *string         `json:"description,omitempty"`
	PaymentMethod  *string         `json:"payment_method,omitempty"`
	StripeID       *string         `json:"stripe_id"`
	SubscriptionID *string         `json:"subscription_id,omitempty"`
	InvoiceID      *string         `json:"invoice_id,omitempty"`
	PaidAt         time.Time       `json:"paid_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// DeriveAmount fills the decimal amount from cents.
func (p *ClientPayment) DeriveAmount() {
	p.Amount = money.FromCents(p.AmountCents, p.Currency).Decimal()
}

// IsManual reports whether the payment was recorded outside a gateway.
func (p *ClientPayment) IsManual() bool {
	return p.StripeID == nil
}

// ── ClientPaymentsResponse ───────────────────────────────────────

// ClientPaymentsResponse is the aggregate payment view for one client.
// TotalAmountPaidCents always equals the sum of the contained payments'
// AmountCents.
type ClientPaymentsResponse struct {
	ClientID             string          `json:"client_id"`
	Currency             string          `json:"currency"`
	TotalAmountPaidCents int64           `json:"total_amount_paid_cents"`
	TotalAmountPaid      decimal.Decimal `json:"total_amount_paid"`
	Payments             []ClientPayment `json:"payments"`
}

// BuildClientPaymentsResponse assembles the aggregate view, deriving the
// total and display amounts from the contained payments.
func BuildClientPaymentsResponse(clientID, currency string, payments []ClientPayment) ClientPaymentsResponse {
	if payments == nil {
		payments = []ClientPayment{}
	}
	var total int64
	for i := range payments {
		payments[i].DeriveAmount()
		total += payments[i].AmountCents
	}
	return ClientPaymentsResponse{
		ClientID:             clientID,
		Currency:             currency,
		TotalAmountPaidCents: total,
		TotalAmountPaid:      money.FromCents(total, currency).Decimal(),
		Payments:             payments,
	}
}

// ── Requests ─────────────────────────────────────────────────────

// RecordPaymentRequest records a manual payment against a client.
// Amount may optionally be supplied as a decimal alongside cents; when
// both are present they must agree.
type RecordPaymentRequest struct {
	AmountCents   int64            `json:"amount_cents"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	Status        string           `json:"status,omitempty"`
	Type          string           `json:"type,omitempty"`
	Description   *string          `json:"description,omitempty"`
	PaymentMethod *string          `json:"payment_method,omitempty"`
	InvoiceID     *string          `json:"invoice_id,omitempty"`
	PaidAt        *string          `json:"paid_at,omitempty"` // RFC 3339, defaults to now
}

// Validate checks the payment request.
func (r *RecordPaymentRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.AmountCents <= 0 {
		errors["amount_cents"] = "Amount (cents) must be positive"
	}
	if r.Status != "" && !ValidPaymentStatuses[r.Status] {
		errors["status"] = "Status must be one of: pending, succeeded, failed, refunded"
	}
	if r.Type != "" && r.Type != "subscription" && r.Type != "one_time" {
		errors["type"] = "Type must be 'subscription' or 'one_time'"
	}
	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}
	if r.Amount != nil && !money.Consistent(r.AmountCents, *r.Amount, currency) {
		errors["amount"] = "Decimal amount does not match amount_cents"
	}
	if r.PaidAt != nil {
		if _, err := time.Parse(time.RFC3339, *r.PaidAt); err != nil {
			errors["paid_at"] = "paid_at must be RFC 3339"
		}
	}

	return errors
}
