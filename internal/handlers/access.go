package handlers

import (
	"net/http"

	"sweepos-backend/internal/access"
)

// AccessHandler serves restriction-notice payloads for gated features.
// The frontend renders these when a tab's feature is not enabled for the
// caller's organization.
type AccessHandler struct{}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler() *AccessHandler {
	return &AccessHandler{}
}

// GetNotice handles GET /api/access/notice?feature=<key>
// Unknown keys are passed through verbatim so the frontend never breaks
// on features shipped ahead of the backend catalog.
func (h *AccessHandler) GetNotice(w http.ResponseWriter, r *http.Request) {
	feature := r.URL.Query().Get("feature")
	JSON(w, http.StatusOK, map[string]interface{}{
		"data": access.NoticeFor(feature),
	})
}

// ListFeatures handles GET /api/access/features
// Returns the known feature catalog with display names.
func (h *AccessHandler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	type featureEntry struct {
		Key         string `json:"key"`
		DisplayName string `json:"display_name"`
	}
	features := []featureEntry{}
	for _, key := range access.KnownFeatures() {
		features = append(features, featureEntry{
			Key:         key,
			DisplayName: access.DisplayName(key),
		})
	}
	JSON(w, http.StatusOK, map[string]interface{}{"data": features})
}
