package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sweepos-backend/internal/ctxkeys"
	"sweepos-backend/internal/database"
	"sweepos-backend/internal/models"
)

// UserHandler manages user accounts and role assignment.
type UserHandler struct {
	db database.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db database.Service) *UserHandler {
	return &UserHandler{db: db}
}

// ── List ───────────────────────────────────────────────────────

// List handles GET /api/users
// Tenant admins see their own organization; platform users see everyone,
// optionally filtered by organization_id.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	where, args, argIdx = appendOrgScope(r.Context(), where, args, argIdx, "u.organization_id")

	if ctxkeys.IsPlatformScope(r.Context()) {
		if orgID := r.URL.Query().Get("organization_id"); orgID != "" {
			where += " AND u.organization_id = $" + strconv.Itoa(argIdx)
			args = append(args, orgID)
			argIdx++
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var total int
	countQuery := "SELECT COUNT(*) FROM users u " + where
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Printf("Error counting users: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	query := `
		SELECT u.id, u.email, u.name, u.role, u.organization_id::text,
			u.created_at::text, u.updated_at::text
		FROM users u ` + where + `
		ORDER BY u.created_at DESC
		LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error fetching users: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.Role, &u.OrganizationID,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			log.Printf("Error scanning user: %v", err)
			continue
		}
		users = append(users, u)
	}

	totalPages := (total + limit - 1) / limit
	JSON(w, http.StatusOK, PaginatedResponse{
		Data: users,
		Pagination: PaginationMeta{
			Page: page, Limit: limit, Total: total, TotalPages: totalPages,
		},
	})
}

// ── UpdateRole ─────────────────────────────────────────────────

// UpdateRole handles PUT /api/users/{id}/role
// A caller can only grant roles below their own level, can never change
// their own role, and tenant admins cannot touch users outside their org.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "id")
	callerID := ctxkeys.GetUserID(r.Context())
	callerRole := ctxkeys.GetUserRole(r.Context())

	if targetID == callerID {
		JSONError(w, http.StatusForbidden, "You cannot change your own role")
		return
	}

	var req models.UpdateRoleRequest
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

	if ctxkeys.RoleLevel[req.Role] >= ctxkeys.RoleLevel[callerRole] {
		JSONError(w, http.StatusForbidden, "You can only grant roles below your own")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var targetRole string
	var targetOrgID *string
	if err := pool.QueryRow(ctx,
		`SELECT role, organization_id::text FROM users WHERE id = $1`, targetID,
	).Scan(&targetRole, &targetOrgID); err != nil {
		JSONError(w, http.StatusNotFound, "User not found")
		return
	}

	if !ctxkeys.IsPlatformScope(r.Context()) {
		if targetOrgID == nil || !checkOrgAccess(r.Context(), *targetOrgID) {
			JSONError(w, http.StatusForbidden, "Access denied to this user")
			return
		}
	}
	if ctxkeys.RoleLevel[targetRole] >= ctxkeys.RoleLevel[callerRole] {
		JSONError(w, http.StatusForbidden, "You cannot modify a user at or above your own level")
		return
	}

	var user models.User
	err := pool.QueryRow(ctx, `
		UPDATE users SET role = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, email, name, role, organization_id::text, created_at::text, updated_at::text
	`, req.Role, targetID,
	).Scan(
		&user.ID, &user.Email, &user.Name, &user.Role, &user.OrganizationID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		log.Printf("Error updating role for user %s: %v", targetID, err)
		JSONError(w, http.StatusInternalServerError, "Failed to update role")
		return
	}

	go logActivity(pool, callerID, "updated_user_role", "user", targetID, map[string]interface{}{
		"role": req.Role,
	})

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    user,
		"message": "Role updated successfully",
	})
}

// ── Delete ─────────────────────────────────────────────────────

// Delete handles DELETE /api/users/{id}
// Same hierarchy rules as role changes; self-deletion is refused.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "id")
	callerID := ctxkeys.GetUserID(r.Context())
	callerRole := ctxkeys.GetUserRole(r.Context())

	if targetID == callerID {
		JSONError(w, http.StatusForbidden, "You cannot delete your own account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var targetRole string
	var targetOrgID *string
	if err := pool.QueryRow(ctx,
		`SELECT role, organization_id::text FROM users WHERE id = $1`, targetID,
	).Scan(&targetRole, &targetOrgID); err != nil {
		JSONError(w, http.StatusNotFound, "User not found")
		return
	}

	if !ctxkeys.IsPlatformScope(r.Context()) {
		if targetOrgID == nil || !checkOrgAccess(r.Context(), *targetOrgID) {
			JSONError(w, http.StatusForbidden, "Access denied to this user")
			return
		}
	}
	if ctxkeys.RoleLevel[targetRole] >= ctxkeys.RoleLevel[callerRole] {
		JSONError(w, http.StatusForbidden, "You cannot delete a user at or above your own level")
		return
	}

	if _, err := pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, targetID); err != nil {
		log.Printf("Error deleting user %s: %v", targetID, err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	go logActivity(pool, callerID, "deleted_user", "user", targetID, nil)

	JSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
