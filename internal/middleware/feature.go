package middleware

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"sweepos-backend/internal/access"
	"sweepos-backend/internal/ctxkeys"
)

// RequireFeature gates a route group behind a per-organization feature
// grant. Platform roles bypass the check. When the feature is not granted
// the response is 403 carrying the access notice payload, which the
// frontend renders directly on the restricted panel.
// Must be used after Auth middleware.
func RequireFeature(pool *pgxpool.Pool, featureKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ctxkeys.IsPlatformScope(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			orgID := ctxkeys.GetOrgID(r.Context())

			var granted bool
			err := pool.QueryRow(r.Context(), `
				SELECT EXISTS(
					SELECT 1 FROM organization_features
					WHERE organization_id = $1 AND feature_key = $2
				)
			`, orgID, featureKey).Scan(&granted)
			if err != nil {
				log.Printf("[feature] grant lookup failed for org %s, feature %s: %v", orgID, featureKey, err)
				writeError(w, http.StatusInternalServerError, "Failed to resolve feature access")
				return
			}

			if !granted {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":  "Feature access restricted",
					"notice": access.NoticeFor(featureKey),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
