package handlers

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"sweepos-backend/internal/access"
	"sweepos-backend/internal/ctxkeys"
	"sweepos-backend/internal/database"
	"sweepos-backend/internal/models"
)

// OrganizationHandler manages tenant accounts. All routes are
// platform-scoped (admin and above).
type OrganizationHandler struct {
	db database.Service
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(db database.Service) *OrganizationHandler {
	return &OrganizationHandler{db: db}
}

// ── List ───────────────────────────────────────────────────────

// List handles GET /api/organizations
// Returns all tenants with client/user counts and enabled features.
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	rows, err := pool.Query(ctx, `
		SELECT o.id, o.name, o.currency, o.created_at::text, o.updated_at::text,
			(SELECT COUNT(*) FROM clients c WHERE c.organization_id = o.id) AS client_count,
			(SELECT COUNT(*) FROM users u WHERE u.organization_id = o.id) AS user_count
		FROM organizations o
		ORDER BY o.created_at DESC
	`)
	if err != nil {
		log.Printf("Error fetching organizations: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch organizations")
		return
	}
	defer rows.Close()

	orgs := []models.Organization{}
	for rows.Next() {
		var org models.Organization
		var clientCount, userCount int
		if err := rows.Scan(
			&org.ID, &org.Name, &org.Currency, &org.CreatedAt, &org.UpdatedAt,
			&clientCount, &userCount,
		); err != nil {
			log.Printf("Error scanning organization: %v", err)
			continue
		}
		org.ClientCount = &clientCount
		org.UserCount = &userCount
		orgs = append(orgs, org)
	}

	// One pass over the grants table beats a query per org
	featRows, err := pool.Query(ctx,
		`SELECT organization_id::text, feature_key FROM organization_features ORDER BY feature_key`,
	)
	if err == nil {
		defer featRows.Close()
		byOrg := map[string][]string{}
		for featRows.Next() {
			var orgID, key string
			if featRows.Scan(&orgID, &key) == nil {
				byOrg[orgID] = append(byOrg[orgID], key)
			}
		}
		for i := range orgs {
			orgs[i].Features = byOrg[orgs[i].ID]
		}
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": orgs})
}

// ── GetByID ────────────────────────────────────────────────────

// GetByID handles GET /api/organizations/{id}
func (h *OrganizationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	org, err := h.fetchOrg(ctx, orgID)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Organization not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": org})
}

func (h *OrganizationHandler) fetchOrg(ctx context.Context, orgID string) (*models.Organization, error) {
	pool := h.db.GetPool()

	var org models.Organization
	var clientCount, userCount int
	err := pool.QueryRow(ctx, `
		SELECT o.id, o.name, o.currency, o.created_at::text, o.updated_at::text,
			(SELECT COUNT(*) FROM clients c WHERE c.organization_id = o.id),
			(SELECT COUNT(*) FROM users u WHERE u.organization_id = o.id)
		FROM organizations o WHERE o.id = $1
	`, orgID).Scan(
		&org.ID, &org.Name, &org.Currency, &org.CreatedAt, &org.UpdatedAt,
		&clientCount, &userCount,
	)
	if err != nil {
		return nil, err
	}
	org.ClientCount = &clientCount
	org.UserCount = &userCount

	org.Features = []string{}
	rows, err := pool.Query(ctx,
		`SELECT feature_key FROM organization_features WHERE organization_id = $1 ORDER BY feature_key`,
		orgID,
	)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var key string
			if rows.Scan(&key) == nil {
				org.Features = append(org.Features, key)
			}
		}
	}
	return &org, nil
}

// ── Create ─────────────────────────────────────────────────────

// Create handles POST /api/organizations
// Provisions a tenant with a bootstrap admin user. The generated password
// is returned ONCE in this response and stored only as a bcrypt hash;
// no other endpoint ever exposes it.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrganizationRequest
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

	features := req.Features
	for _, key := range features {
		if !access.IsKnownFeature(key) {
			JSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Unknown feature key: %s", key))
			return
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	// Fall back to platform defaults when no explicit feature list is given
	if features == nil {
		var defaults []string
		if err := pool.QueryRow(ctx,
			`SELECT default_features FROM global_settings WHERE id = 1`,
		).Scan(&defaults); err == nil {
			features = defaults
		}
	}

	password, err := generatePassword(16)
	if err != nil {
		log.Printf("Error generating bootstrap password: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Printf("Error hashing bootstrap password: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Printf("Error starting transaction: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}
	defer tx.Rollback(ctx)

	var org models.Organization
	err = tx.QueryRow(ctx, `
		INSERT INTO organizations (name, currency)
		VALUES ($1, $2)
		RETURNING id, name, currency, created_at::text, updated_at::text
	`, req.Name, currency,
	).Scan(&org.ID, &org.Name, &org.Currency, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			JSONError(w, http.StatusConflict, "An organization with this name already exists")
			return
		}
		log.Printf("Error creating organization: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (email, password_hash, name, role, organization_id)
		VALUES ($1, $2, $3, 'admin', $4)
	`, req.AdminEmail, string(hash), req.Name+" Admin", org.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			JSONError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		log.Printf("Error creating bootstrap admin: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	for _, key := range features {
		if _, err := tx.Exec(ctx, `
			INSERT INTO organization_features (organization_id, feature_key)
			VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, org.ID, key); err != nil {
			log.Printf("Error granting feature %s: %v", key, err)
			JSONError(w, http.StatusInternalServerError, "Failed to create organization")
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("Error committing organization: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	if features == nil {
		features = []string{}
	}
	org.Features = features

	go logActivity(pool, ctxkeys.GetUserID(r.Context()), "created_organization", "organization", org.ID, map[string]interface{}{
		"name": org.Name,
	})

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data": models.OrganizationCreated{
			Organization:  org,
			AdminEmail:    req.AdminEmail,
			AdminPassword: password,
		},
		"message": "Organization created. Save the admin password: it will not be shown again.",
	})
}

// ── Update ─────────────────────────────────────────────────────

// Update handles PUT /api/organizations/{id}
// Updates tenant details and, when a feature list is supplied, replaces
// the feature grants wholesale.
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")

	var req models.UpdateOrganizationRequest
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

	for _, key := range req.Features {
		if !access.IsKnownFeature(key) {
			JSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Unknown feature key: %s", key))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Printf("Error starting transaction: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to update organization")
		return
	}
	defer tx.Rollback(ctx)

	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	argIdx := 1

	if req.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *req.Name)
		argIdx++
	}
	if req.Currency != nil {
		setClauses = append(setClauses, fmt.Sprintf("currency = $%d", argIdx))
		args = append(args, *req.Currency)
		argIdx++
	}

	args = append(args, orgID)
	query := fmt.Sprintf("UPDATE organizations SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argIdx)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		log.Printf("Error updating organization %s: %v", orgID, err)
		JSONError(w, http.StatusInternalServerError, "Failed to update organization")
		return
	}
	if tag.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Organization not found")
		return
	}

	if req.Features != nil {
		if _, err := tx.Exec(ctx,
			`DELETE FROM organization_features WHERE organization_id = $1`, orgID,
		); err != nil {
			log.Printf("Error clearing feature grants: %v", err)
			JSONError(w, http.StatusInternalServerError, "Failed to update organization")
			return
		}
		for _, key := range req.Features {
			if _, err := tx.Exec(ctx, `
				INSERT INTO organization_features (organization_id, feature_key)
				VALUES ($1, $2) ON CONFLICT DO NOTHING
			`, orgID, key); err != nil {
				log.Printf("Error granting feature %s: %v", key, err)
				JSONError(w, http.StatusInternalServerError, "Failed to update organization")
				return
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("Error committing update: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to update organization")
		return
	}

	org, err := h.fetchOrg(ctx, orgID)
	if err != nil {
		JSONError(w, http.StatusInternalServerError, "Failed to load updated organization")
		return
	}

	go logActivity(pool, ctxkeys.GetUserID(r.Context()), "updated_organization", "organization", orgID, nil)

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    org,
		"message": "Organization updated successfully",
	})
}

// ── Delete ─────────────────────────────────────────────────────

// Delete handles DELETE /api/organizations/{id}
// Cascades to users, clients, payments, and feature grants.
func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	tag, err := pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, orgID)
	if err != nil {
		log.Printf("Error deleting organization %s: %v", orgID, err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete organization")
		return
	}
	if tag.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Organization not found")
		return
	}

	go logActivity(pool, ctxkeys.GetUserID(r.Context()), "deleted_organization", "organization", orgID, nil)

	JSON(w, http.StatusOK, map[string]string{"message": "Organization deleted successfully"})
}

// ── helpers ────────────────────────────────────────────────────

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generatePassword builds a random bootstrap password from an alphabet
// without lookalike characters.
func generatePassword(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
