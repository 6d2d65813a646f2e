package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"sweepos-backend/internal/crm"
	"sweepos-backend/internal/database"
	"sweepos-backend/internal/models"
	"sweepos-backend/internal/money"
)

// DashboardHandler serves the per-tenant rollup and the platform-wide
// health view.
type DashboardHandler struct {
	db database.Service
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db database.Service) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// ── Organization Summary ───────────────────────────────────────

// GetSummary handles GET /api/dashboard/summary
// Builds the organization rollup: client counts by lifecycle state,
// MRR/ARR, revenue aggregates, and bounded recent-entity previews.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	orgID, err := resolveOrgID(r.Context(), r.URL.Query().Get("organization_id"))
	if err != nil {
		JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !checkOrgAccess(r.Context(), orgID) {
		JSONError(w, http.StatusForbidden, "Access denied to this organization")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	summary := models.OrganizationDashboardSummary{
		OrganizationID: orgID,
		ClientsByState: map[string]int{},
		RecentClients:  []models.ClientPreview{},
		RecentPayments: []models.PaymentPreview{},
	}
	for _, state := range crm.LifecycleStates {
		summary.ClientsByState[state] = 0
	}

	if err := pool.QueryRow(ctx,
		`SELECT COALESCE(currency, 'USD') FROM organizations WHERE id = $1`, orgID,
	).Scan(&summary.Currency); err != nil {
		JSONError(w, http.StatusNotFound, "Organization not found")
		return
	}

	// Client counts, MRR, and running programs in one scan
	rows, err := pool.Query(ctx, `
		SELECT lifecycle_state, estimated_mrr_cents,
			program_start_date, COALESCE(program_duration_weeks, 0)
		FROM clients WHERE organization_id = $1
	`, orgID)
	if err != nil {
		log.Printf("Error fetching dashboard clients: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to build dashboard summary")
		return
	}
	defer rows.Close()

	now := time.Now()
	for rows.Next() {
		var state string
		var mrrCents int64
		var programStart *time.Time
		var durationWeeks int
		if err := rows.Scan(&state, &mrrCents, &programStart, &durationWeeks); err != nil {
			log.Printf("Error scanning dashboard client: %v", err)
			continue
		}

		summary.TotalClients++
		summary.ClientsByState[state]++
		if state == crm.StateActive {
			summary.ActiveClients++
		}
		if crm.IsRevenueState(state) {
			summary.MRRCents += mrrCents
		}
		if days := crm.ProgramDaysRemaining(programStart, durationWeeks, now); days != nil && *days > 0 {
			summary.ProgramsRunning++
		}
	}

	summary.ARRCents = crm.AnnualizeMRR(summary.MRRCents)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if err := pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount_cents) FILTER (WHERE paid_at >= $2), 0),
			COALESCE(SUM(amount_cents), 0)
		FROM client_payments
		WHERE organization_id = $1 AND status = 'succeeded'
	`, orgID, monthStart,
	).Scan(&summary.RevenueThisMonthCents, &summary.TotalRevenueCents); err != nil {
		log.Printf("Error aggregating revenue: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to build dashboard summary")
		return
	}

	summary.MRR = money.FromCents(summary.MRRCents, summary.Currency).Decimal()
	summary.RevenueThisMonth = money.FromCents(summary.RevenueThisMonthCents, summary.Currency).Decimal()
	summary.TotalRevenue = money.FromCents(summary.TotalRevenueCents, summary.Currency).Decimal()

	// Recent clients, newest first
	clientRows, err := pool.Query(ctx, `
		SELECT id, name, lifecycle_state, created_at::text
		FROM clients WHERE organization_id = $1
		ORDER BY created_at DESC LIMIT $2
	`, orgID, models.RecentPreviewLimit)
	if err == nil {
		defer clientRows.Close()
		for clientRows.Next() {
			var p models.ClientPreview
			if clientRows.Scan(&p.ID, &p.Name, &p.LifecycleState, &p.CreatedAt) == nil {
				summary.RecentClients = append(summary.RecentClients, p)
			}
		}
	}

	// Recent payments, newest first
	payRows, err := pool.Query(ctx, `
		SELECT p.id, p.client_id, c.name, p.amount_cents, p.currency, p.status, p.paid_at::text
		FROM client_payments p
		JOIN clients c ON c.id = p.client_id
		WHERE p.organization_id = $1
		ORDER BY p.paid_at DESC LIMIT $2
	`, orgID, models.RecentPreviewLimit)
	if err == nil {
		defer payRows.Close()
		for payRows.Next() {
			var p models.PaymentPreview
			if payRows.Scan(&p.ID, &p.ClientID, &p.ClientName, &p.AmountCents, &p.Currency, &p.Status, &p.PaidAt) == nil {
				p.Amount = money.FromCents(p.AmountCents, p.Currency).Decimal()
				summary.RecentPayments = append(summary.RecentPayments, p)
			}
		}
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": summary})
}

// ── Global Health ──────────────────────────────────────────────

// GetGlobalHealth handles GET /api/health/global (super_admin only)
// Cross-tenant counters plus database pool statistics.
func (h *DashboardHandler) GetGlobalHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var health models.GlobalHealth
	err := pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM organizations),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM clients),
			(SELECT COUNT(*) FROM client_payments)
	`).Scan(
		&health.TotalOrganizations, &health.TotalUsers,
		&health.TotalClients, &health.TotalPayments,
	)
	if err != nil {
		log.Printf("Error fetching global counters: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch global health")
		return
	}

	health.Database = h.db.Health()

	JSON(w, http.StatusOK, map[string]interface{}{"data": health})
}
