package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"sweepos-backend/internal/access"
	"sweepos-backend/internal/ctxkeys"
	"sweepos-backend/internal/database"
	"sweepos-backend/internal/models"
)

// SettingsHandler manages the platform-wide settings row (super_admin only).
type SettingsHandler struct {
	db database.Service
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(db database.Service) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.fetch(ctx)
	if err != nil {
		log.Printf("Error fetching global settings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch settings")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": settings})
}

// Update handles PUT /api/settings
// Partial update: only supplied fields change.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	for _, key := range req.DefaultFeatures {
		if !access.IsKnownFeature(key) {
			JSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Unknown feature key: %s", key))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	argIdx := 1

	addSet := func(col string, val interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if req.SignupsEnabled != nil {
		addSet("signups_enabled", *req.SignupsEnabled)
	}
	if req.BillingEnabled != nil {
		addSet("billing_enabled", *req.BillingEnabled)
	}
	if req.MaintenanceMode != nil {
		addSet("maintenance_mode", *req.MaintenanceMode)
	}
	if req.DefaultFeatures != nil {
		addSet("default_features", req.DefaultFeatures)
	}
	if req.Meta != nil {
		b, err := json.Marshal(req.Meta)
		if err != nil {
			JSONError(w, http.StatusBadRequest, "Invalid meta object")
			return
		}
		addSet("meta", b)
	}

	query := "UPDATE global_settings SET " + strings.Join(setClauses, ", ") + " WHERE id = 1"

	if _, err := pool.Exec(ctx, query, args...); err != nil {
		log.Printf("Error updating global settings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	settings, err := h.fetch(ctx)
	if err != nil {
		log.Printf("Error fetching updated settings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch updated settings")
		return
	}

	go logActivity(pool, ctxkeys.GetUserID(r.Context()), "updated_settings", "settings", "global", nil)

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    settings,
		"message": "Settings updated successfully",
	})
}

func (h *SettingsHandler) fetch(ctx context.Context) (*models.GlobalSettings, error) {
	pool := h.db.GetPool()

	var settings models.GlobalSettings
	var metaRaw []byte
	err := pool.QueryRow(ctx, `
		SELECT signups_enabled, billing_enabled, maintenance_mode,
			COALESCE(default_features, '{}'), meta, updated_at::text
		FROM global_settings WHERE id = 1
	`).Scan(
		&settings.SignupsEnabled, &settings.BillingEnabled, &settings.MaintenanceMode,
		&settings.DefaultFeatures, &metaRaw, &settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metaRaw) > 0 {
		if err := json.Unmarshal(metaRaw, &settings.Meta); err != nil {
			log.Printf("Error parsing settings meta: %v", err)
		}
	}
	if settings.DefaultFeatures == nil {
		settings.DefaultFeatures = []string{}
	}
	return &settings, nil
}
