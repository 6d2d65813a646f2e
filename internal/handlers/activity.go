package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"sweepos-backend/internal/database"
	"sweepos-backend/internal/models"
)

// ActivityHandler serves the audit trail (admin and above).
type ActivityHandler struct {
	db database.Service
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(db database.Service) *ActivityHandler {
	return &ActivityHandler{db: db}
}

// List handles GET /api/activity
// Newest first, with optional entity_type and action filters.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if entityType := r.URL.Query().Get("entity_type"); entityType != "" {
		where += " AND a.entity_type = $" + strconv.Itoa(argIdx)
		args = append(args, entityType)
		argIdx++
	}
	if action := r.URL.Query().Get("action"); action != "" {
		where += " AND a.action = $" + strconv.Itoa(argIdx)
		args = append(args, action)
		argIdx++
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var total int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM activity_log a "+where, args...).Scan(&total); err != nil {
		log.Printf("Error counting activity: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}

	query := `
		SELECT a.id, COALESCE(a.user_id::text, ''), u.name, a.action,
			a.entity_type, a.entity_id, a.details, a.created_at::text
		FROM activity_log a
		LEFT JOIN users u ON u.id = a.user_id
		` + where + `
		ORDER BY a.created_at DESC
		LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error fetching activity: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}
	defer rows.Close()

	entries := []models.ActivityEntry{}
	for rows.Next() {
		var e models.ActivityEntry
		var detailsRaw []byte
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.UserName, &e.Action,
			&e.EntityType, &e.EntityID, &detailsRaw, &e.CreatedAt,
		); err != nil {
			log.Printf("Error scanning activity entry: %v", err)
			continue
		}
		if len(detailsRaw) > 0 {
			if err := json.Unmarshal(detailsRaw, &e.Details); err != nil {
				log.Printf("Error parsing activity details: %v", err)
			}
		}
		entries = append(entries, e)
	}

	totalPages := (total + limit - 1) / limit
	JSON(w, http.StatusOK, PaginatedResponse{
		Data: entries,
		Pagination: PaginationMeta{
			Page: page, Limit: limit, Total: total, TotalPages: totalPages,
		},
	})
}
