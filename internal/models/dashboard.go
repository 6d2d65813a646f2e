package models

import "github.com/shopspring/decimal"

// ── Organization Dashboard ───────────────────────────────────────

// ClientPreview is a bounded slim view for recent-entity lists.
type ClientPreview struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	LifecycleState string `json:"lifecycle_state"`
	CreatedAt      string `json:"created_at"`
}

// PaymentPreview is a bounded slim view of a recent payment.
type PaymentPreview struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	ClientName  string          `json:"client_name"`
	AmountCents int64           `json:"amount_cents"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	PaidAt      string          `json:"paid_at"`
}

// OrganizationDashboardSummary is the per-tenant rollup for the admin
// dashboard. Monetary aggregates are carried in cents with derived
// decimal twins; recent-entity previews are bounded small sequences.
type OrganizationDashboardSummary struct {
	OrganizationID string `json:"organization_id"`

	TotalClients    int            `json:"total_clients"`
	ActiveClients   int            `json:"active_clients"`
	ClientsByState  map[string]int `json:"clients_by_state"` // lifecycle state → count
	ProgramsRunning int            `json:"programs_running"` // clients inside a program window

	Currency              string          `json:"currency"`
	MRRCents              int64           `json:"mrr_cents"`
	MRR                   decimal.Decimal `json:"mrr"`
	ARRCents              int64           `json:"arr_cents"`
	RevenueThisMonthCents int64           `json:"revenue_this_month_cents"`
	RevenueThisMonth      decimal.Decimal `json:"revenue_this_month"`
	TotalRevenueCents     int64           `json:"total_revenue_cents"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`

	RecentClients  []ClientPreview  `json:"recent_clients"`  // newest first, max 5
	RecentPayments []PaymentPreview `json:"recent_payments"` // newest first, max 5
}

// RecentPreviewLimit bounds the recent-entity sequences on the dashboard.
const RecentPreviewLimit = 5
