package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sweepos-backend/internal/ctxkeys"
	"sweepos-backend/internal/database"
	"sweepos-backend/internal/gateway"
	"sweepos-backend/internal/models"
)

// PaymentHandler handles client payment requests: the aggregate payments
// view, manual payment entry, and gateway sync.
type PaymentHandler struct {
	db     database.Service
	source gateway.PaymentSource // nil when Stripe is not configured
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(db database.Service, source gateway.PaymentSource) *PaymentHandler {
	return &PaymentHandler{db: db, source: source}
}

const paymentCols = `p.id, p.client_id, p.organization_id,
	p.amount_cents, p.currency, p.status, p.type,
	p.description, p.payment_method, p.stripe_id,
	p.subscription_id, p.invoice_id, p.paid_at, p.created_at`

const paymentRetCols = `id, client_id, organization_id,
	amount_cents, currency, status, type,
	description, payment_method, stripe_id,
	subscription_id, invoice_id, paid_at, created_at`

func scanPayment(scanner interface {
	Scan(dest ...interface{}) error
}, p *models.ClientPayment) error {
	return scanner.Scan(
		&p.ID, &p.ClientID, &p.OrganizationID,
		&p.AmountCents, &p.Currency, &p.Status, &p.Type,
		&p.Description, &p.PaymentMethod, &p.StripeID,
		&p.SubscriptionID, &p.InvoiceID, &p.PaidAt, &p.CreatedAt,
	)
}

// ── ListByClient ───────────────────────────────────────────────

// ListByClient handles GET /api/clients/{id}/payments
// Returns the aggregate ClientPaymentsResponse: the ordered payment list
// (newest first) with the total derived from the contained rows.
func (h *PaymentHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	if !checkClientAccess(ctx, pool, clientID) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	var currency string
	if err := pool.QueryRow(ctx,
		`SELECT COALESCE(currency, 'USD') FROM clients WHERE id = $1`, clientID,
	).Scan(&currency); err != nil {
		JSONError(w, http.StatusNotFound, "Client not found")
		return
	}

	rows, err := pool.Query(ctx, `
		SELECT `+paymentCols+`
		FROM client_payments p
		WHERE p.client_id = $1
		ORDER BY p.paid_at DESC, p.created_at DESC
	`, clientID)
	if err != nil {
		log.Printf("Error fetching payments for client %s: %v", clientID, err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch payments")
		return
	}
	defer rows.Close()

	payments := []models.ClientPayment{}
	for rows.Next() {
		var p models.ClientPayment
		if err := scanPayment(rows, &p); err != nil {
			log.Printf("Error scanning payment: %v", err)
			continue
		}
		payments = append(payments, p)
	}

	JSON(w, http.StatusOK, models.BuildClientPaymentsResponse(clientID, currency, payments))
}

// ── Record ─────────────────────────────────────────────────────

// Record handles POST /api/clients/{id}/payments
// Records a manual (non-gateway) payment: stripe_id stays NULL.
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	var req models.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Validation failed",
			"details": errs,
		})
		return
	}

	if req.Status == "" {
		req.Status = models.PaymentStatusSucceeded
	}
	if req.Type == "" {
		req.Type = "one_time"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	if !checkClientAccess(ctx, pool, clientID) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	var orgID, clientCurrency string
	if err := pool.QueryRow(ctx,
		`SELECT organization_id::text, COALESCE(currency, 'USD') FROM clients WHERE id = $1`, clientID,
	).Scan(&orgID, &clientCurrency); err != nil {
		JSONError(w, http.StatusNotFound, "Client not found")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = clientCurrency
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		// Already validated as RFC 3339
		paidAt, _ = time.Parse(time.RFC3339, *req.PaidAt)
	}

	// Manual payments have no gateway invoice; generate a receipt reference
	invoiceID := req.InvoiceID
	if invoiceID == nil {
		ref := newPaymentReference()
		invoiceID = &ref
	}

	var payment models.ClientPayment
	row := pool.QueryRow(ctx, `
		INSERT INTO client_payments (
			client_id, organization_id, amount_cents, currency, status, type,
			description, payment_method, stripe_id, invoice_id, paid_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, $9, $10)
		RETURNING `+paymentRetCols,
		clientID, orgID, req.AmountCents, currency, req.Status, req.Type,
		req.Description, req.PaymentMethod, invoiceID, paidAt,
	)
	if err := scanPayment(row, &payment); err != nil {
		log.Printf("Error recording payment: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to record payment")
		return
	}
	payment.DeriveAmount()

	go logActivity(pool, ctxkeys.GetUserID(r.Context()), "recorded_payment", "payment", payment.ID, map[string]interface{}{
		"client_id":    clientID,
		"amount_cents": payment.AmountCents,
	})

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":    payment,
		"message": "Payment recorded successfully",
	})
}

// ── Sync ───────────────────────────────────────────────────────

// Sync handles POST /api/clients/{id}/payments/sync
// Pulls the client's charges from the payment gateway and upserts them,
// keyed by stripe_id. Manual payments are untouched.
func (h *PaymentHandler) Sync(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	if h.source == nil {
		JSONError(w, http.StatusServiceUnavailable, "Payment gateway is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	if !checkClientAccess(ctx, pool, clientID) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	var orgID string
	var stripeCustomerID *string
	if err := pool.QueryRow(ctx,
		`SELECT organization_id::text, stripe_customer_id FROM clients WHERE id = $1`, clientID,
	).Scan(&orgID, &stripeCustomerID); err != nil {
		JSONError(w, http.StatusNotFound, "Client not found")
		return
	}
	if stripeCustomerID == nil || *stripeCustomerID == "" {
		JSONError(w, http.StatusUnprocessableEntity, "Client has no Stripe customer ID")
		return
	}

	charges, err := h.source.ListCharges(ctx, *stripeCustomerID)
	if err != nil {
		log.Printf("Error listing %s charges for client %s: %v", h.source.Name(), clientID, err)
		JSONError(w, http.StatusBadGateway, "Failed to fetch charges from payment gateway")
		return
	}

	synced := 0
	for _, ch := range charges {
		tag, err := pool.Exec(ctx, `
			INSERT INTO client_payments (
				client_id, organization_id, amount_cents, currency, status, type,
				description, payment_method, stripe_id, subscription_id, invoice_id, paid_at
			)
			VALUES ($1, $2, $3, $4, $5, 'subscription', $6, $7, $8, $9, $10, $11)
			ON CONFLICT (stripe_id) DO UPDATE SET status = EXCLUDED.status
		`, clientID, orgID, ch.AmountCents, ch.Currency, ch.Status,
			ch.Description, ch.PaymentMethod, ch.ProviderID, ch.SubscriptionID, ch.InvoiceID, ch.PaidAt,
		)
		if err != nil {
			log.Printf("Error upserting charge %s: %v", ch.ProviderID, err)
			continue
		}
		synced += int(tag.RowsAffected())
	}

	go logActivity(pool, ctxkeys.GetUserID(r.Context()), "synced_payments", "client", clientID, map[string]interface{}{
		"gateway": h.source.Name(),
		"charges": len(charges),
	})

	JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Payments synced",
		"fetched": len(charges),
		"synced":  synced,
	})
}

// newPaymentReference generates a unique reference for exports and
// receipts of manual payments.
func newPaymentReference() string {
	return "pay_" + uuid.NewString()
}
