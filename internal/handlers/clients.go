package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sweepos-backend/internal/crm"
	"sweepos-backend/internal/ctxkeys"
	"sweepos-backend/internal/database"
	"sweepos-backend/internal/models"
)

// ClientHandler handles client-related HTTP requests.
type ClientHandler struct {
	db database.Service
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(db database.Service) *ClientHandler {
	return &ClientHandler{db: db}
}

// ── Columns ────────────────────────────────────────────────────
// Central column lists keep Create/GetByID/List in sync.
// Aliased version (for SELECT with FROM clause):
const clientCols = `c.id, c.organization_id, c.name, c.email, c.emails,
	c.phone, c.instagram, c.lifecycle_state,
	c.estimated_mrr_cents, c.currency,
	c.program_start_date::text, c.program_duration_weeks,
	c.meta, c.stripe_customer_id,
	c.created_at, c.updated_at`

// Unaliased version (for INSERT/UPDATE RETURNING):
const clientRetCols = `id, organization_id, name, email, emails,
	phone, instagram, lifecycle_state,
	estimated_mrr_cents, currency,
	program_start_date::text, program_duration_weeks,
	meta, stripe_customer_id,
	created_at, updated_at`

// ── Scan Helpers ───────────────────────────────────────────────

func scanClient(scanner interface {
	Scan(dest ...interface{}) error
}, c *models.Client) error {
	var meta []byte
	err := scanner.Scan(
		&c.ID, &c.OrganizationID, &c.Name, &c.Email, &c.Emails,
		&c.Phone, &c.Instagram, &c.LifecycleState,
		&c.EstimatedMRRCents, &c.Currency,
		&c.ProgramStartDate, &c.ProgramDurationWeeks,
		&meta, &c.StripeCustomerID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &c.Meta); err != nil {
			log.Printf("Error decoding client meta for %s: %v", c.ID, err)
		}
	}
	if c.Emails == nil {
		c.Emails = []string{}
	}
	c.DeriveMRR()
	return nil
}

// enrichWithProgram computes the derived program fields for a client.
// End date and progress are never stored; they are recomputed on every read.
func enrichWithProgram(c *models.Client, now time.Time) models.ClientWithProgram {
	out := models.ClientWithProgram{Client: *c}

	if c.ProgramStartDate == nil || c.ProgramDurationWeeks == nil {
		return out
	}
	start, err := time.Parse("2006-01-02", *c.ProgramStartDate)
	if err != nil {
		return out
	}

	end := crm.ProgramEnd(start, *c.ProgramDurationWeeks).Format("2006-01-02")
	out.ProgramEndDate = &end
	out.ProgramProgressPercent = crm.ProgramProgress(&start, *c.ProgramDurationWeeks, now)
	out.ProgramDaysRemaining = crm.ProgramDaysRemaining(&start, *c.ProgramDurationWeeks, now)
	return out
}

// ── Create ─────────────────────────────────────────────────────

// Create handles POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClientRequest
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

	orgID, err := resolveOrgID(r.Context(), r.URL.Query().Get("organization_id"))
	if err != nil {
		JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Defaults: every new client starts as a cold lead.
	if req.LifecycleState == "" {
		req.LifecycleState = crm.StateColdLead
	}
	var mrrCents int64
	if req.EstimatedMRRCents != nil {
		mrrCents = *req.EstimatedMRRCents
	}
	if req.Emails == nil {
		req.Emails = []string{}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	currency := req.Currency
	if currency == "" {
		// Inherit the organization's default currency
		if err := pool.QueryRow(ctx,
			`SELECT COALESCE(currency, 'USD') FROM organizations WHERE id = $1`, orgID,
		).Scan(&currency); err != nil {
			JSONError(w, http.StatusNotFound, "Organization not found")
			return
		}
	}

	var metaJSON interface{}
	if len(req.Meta) > 0 {
		b, err := json.Marshal(req.Meta)
		if err != nil {
			JSONError(w, http.StatusBadRequest, "Invalid meta payload")
			return
		}
		metaJSON = b
	}

	var client models.Client
	row := pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO clients (
			organization_id, name, email, emails, phone, instagram,
			lifecycle_state, estimated_mrr_cents, currency,
			program_start_date, program_duration_weeks, meta, stripe_customer_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING %s
	`, clientRetCols),
		orgID, req.Name, req.Email, req.Emails, req.Phone, req.Instagram,
		req.LifecycleState, mrrCents, currency,
		req.ProgramStartDate, req.ProgramDurationWeeks, metaJSON, req.StripeCustomerID,
	)
	if err := scanClient(row, &client); err != nil {
		log.Printf("Error creating client: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	go logActivity(pool, ctxkeys.GetUserID(r.Context()), "created_client", "client", client.ID, map[string]interface{}{
		"name": client.Name,
	})

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":    enrichWithProgram(&client, time.Now()),
		"message": "Client created successfully",
	})
}

// ── List ───────────────────────────────────────────────────────

// List handles GET /api/clients with pagination, filtering, and sorting.
// Tenant users see only their organization's clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	lifecycleState := q.Get("lifecycle_state")
	search := q.Get("search")
	orgFilter := q.Get("organization_id")
	sortBy := q.Get("sort_by")
	sortOrder := q.Get("sort_order")

	// Whitelist allowed sort columns
	allowedSorts := map[string]string{
		"name":                "c.name",
		"created_at":          "c.created_at",
		"estimated_mrr_cents": "c.estimated_mrr_cents",
		"lifecycle_state":     "c.lifecycle_state",
	}
	sortCol, ok := allowedSorts[sortBy]
	if !ok {
		sortCol = "c.created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	if lifecycleState != "" && !crm.IsValidLifecycleState(lifecycleState) {
		JSONError(w, http.StatusBadRequest, "Invalid lifecycle_state filter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	// Build dynamic WHERE clause
	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	// Tenant scope (role-based)
	where, args, argIdx = appendOrgScope(ctx, where, args, argIdx, "c.organization_id")

	if orgFilter != "" && ctxkeys.IsPlatformScope(ctx) {
		where += fmt.Sprintf(" AND c.organization_id = $%d", argIdx)
		args = append(args, orgFilter)
		argIdx++
	}
	if lifecycleState != "" {
		where += fmt.Sprintf(" AND c.lifecycle_state = $%d", argIdx)
		args = append(args, lifecycleState)
		argIdx++
	}
	if search != "" {
		where += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.email ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM clients c %s`, where)
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Printf("Error counting clients: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch clients")
		return
	}

	query := fmt.Sprintf(`
		SELECT %s FROM clients c
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, clientCols, where, sortCol, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying clients: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch clients")
		return
	}
	defer rows.Close()

	now := time.Now()
	clients := []models.ClientWithProgram{}
	for rows.Next() {
		var c models.Client
		if err := scanClient(rows, &c); err != nil {
			log.Printf("Error scanning client: %v", err)
			continue
		}
		clients = append(clients, enrichWithProgram(&c, now))
	}

	JSON(w, http.StatusOK, PaginatedResponse{
		Data: clients,
		Pagination: PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// ── GetByID ────────────────────────────────────────────────────

// GetByID handles GET /api/clients/{id}
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	if !checkClientAccess(ctx, pool, id) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	var client models.Client
	row := pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM clients c WHERE c.id = $1`, clientCols), id)
	if err := scanClient(row, &client); err != nil {
		JSONError(w, http.StatusNotFound, "Client not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": enrichWithProgram(&client, time.Now()),
	})
}

// ── Update ─────────────────────────────────────────────────────

// Update handles PUT /api/clients/{id} with partial semantics: only the
// fields present in the body are written.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateClientRequest
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	if !checkClientAccess(ctx, pool, id) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	// Build dynamic SET clause from present fields
	set := "updated_at = NOW()"
	args := []interface{}{}
	argIdx := 1

	addSet := func(col string, val interface{}) {
		set += fmt.Sprintf(", %s = $%d", col, argIdx)
		args = append(args, val)
		argIdx++
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Email != nil {
		addSet("email", *req.Email)
	}
	if req.Emails != nil {
		addSet("emails", req.Emails)
	}
	if req.Phone != nil {
		addSet("phone", *req.Phone)
	}
	if req.Instagram != nil {
		addSet("instagram", *req.Instagram)
	}
	if req.LifecycleState != nil {
		addSet("lifecycle_state", *req.LifecycleState)
	}
	if req.EstimatedMRRCents != nil {
		addSet("estimated_mrr_cents", *req.EstimatedMRRCents)
	}
	if req.Currency != nil {
		addSet("currency", *req.Currency)
	}
	if req.ProgramStartDate != nil {
		addSet("program_start_date", *req.ProgramStartDate)
	}
	if req.ProgramDurationWeeks != nil {
		addSet("program_duration_weeks", *req.ProgramDurationWeeks)
	}
	if req.Meta != nil {
		b, err := json.Marshal(req.Meta)
		if err != nil {
			JSONError(w, http.StatusBadRequest, "Invalid meta payload")
			return
		}
		addSet("meta", b)
	}
	if req.StripeCustomerID != nil {
		addSet("stripe_customer_id", *req.StripeCustomerID)
	}

	query := fmt.Sprintf(`UPDATE clients SET %s WHERE id = $%d RETURNING %s`,
		set, argIdx, clientRetCols)
	args = append(args, id)

	var client models.Client
	row := pool.QueryRow(ctx, query, args...)
	if err := scanClient(row, &client); err != nil {
		JSONError(w, http.StatusNotFound, "Client not found")
		return
	}

	go logActivity(pool, ctxkeys.GetUserID(r.Context()), "updated_client", "client", id, nil)

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    enrichWithProgram(&client, time.Now()),
		"message": "Client updated successfully",
	})
}

// ── Delete ─────────────────────────────────────────────────────

// Delete removes a client and cascades to its payments and attachments.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	if !checkClientAccess(ctx, pool, id) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	result, err := pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		log.Printf("Error deleting client: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	if result.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Client not found")
		return
	}

	go logActivity(pool, ctxkeys.GetUserID(r.Context()), "deleted_client", "client", id, nil)

	JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Client deleted successfully",
	})
}
