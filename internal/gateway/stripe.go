// Package gateway integrates external payment providers. Stripe is the
// only provider today; payments recorded by hand carry no gateway id.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// GatewayPayment is a provider-neutral view of one charge, ready to be
// upserted as a client payment row.
type GatewayPayment struct {
	ProviderID     string // charge id — stored as stripe_id
	AmountCents    int64
	Currency       string
	Status         string // mapped to the payment status enum
	Description    *string
	PaymentMethod  *string
	InvoiceID      *string
	SubscriptionID *string
	PaidAt         time.Time
}

// PaymentSource lists charges for an external customer.
// Abstracted behind an interface so the sync handler can be exercised
// without a live Stripe account.
type PaymentSource interface {
	ListCharges(ctx context.Context, customerID string) ([]GatewayPayment, error)
	Name() string
}

// StripeGateway implements PaymentSource against the Stripe API.
type StripeGateway struct {
	sc *client.API
}

// NewStripeGateway builds a gateway from an API secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{sc: sc}
}

// Name returns the provider name.
func (g *StripeGateway) Name() string { return "stripe" }

// ListCharges fetches all charges for a Stripe customer, newest first.
func (g *StripeGateway) ListCharges(ctx context.Context, customerID string) ([]GatewayPayment, error) {
	params := &stripe.ChargeListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var out []GatewayPayment
	it := g.sc.Charges.List(params)
	for it.Next() {
		ch := it.Charge()
		out = append(out, fromCharge(ch))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("stripe list charges for %s: %w", customerID, err)
	}
	return out, nil
}

// fromCharge maps a Stripe charge onto the neutral payment view.
func fromCharge(ch *stripe.Charge) GatewayPayment {
	p := GatewayPayment{
		ProviderID:  ch.ID,
		AmountCents: ch.Amount,
		Currency:    strings.ToUpper(string(ch.Currency)),
		Status:      mapChargeStatus(ch),
		PaidAt:      time.Unix(ch.Created, 0).UTC(),
	}
	if ch.Description != "" {
		desc := ch.Description
		p.Description = &desc
	}
	if ch.PaymentMethodDetails != nil && ch.PaymentMethodDetails.Type != "" {
		method := string(ch.PaymentMethodDetails.Type)
		p.PaymentMethod = &method
	}
	if ch.Invoice != nil && ch.Invoice.ID != "" {
		inv := ch.Invoice.ID
		p.InvoiceID = &inv
	}
	return p
}

// mapChargeStatus translates Stripe charge state to the payment enum.
func mapChargeStatus(ch *stripe.Charge) string {
	if ch.Refunded {
		return "refunded"
	}
	switch ch.Status {
	case stripe.ChargeStatusSucceeded:
		return "succeeded"
	case stripe.ChargeStatusPending:
		return "pending"
	default:
		return "failed"
	}
}
