package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweepos-backend/internal/ctxkeys"
)

const testSecret = "test-secret-key-that-is-long-enough!"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestAuth(t *testing.T) {
	var gotUserID, gotRole, gotOrgID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = ctxkeys.GetUserID(r.Context())
		gotRole = ctxkeys.GetUserRole(r.Context())
		gotOrgID = ctxkeys.GetOrgID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(testSecret)(next)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"userId": "u1", "role": "member", "orgId": "org1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("tenant role without org is rejected", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"userId": "u1", "role": "member",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid tenant token injects context", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"userId": "u1", "role": "member", "orgId": "org1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", gotUserID)
		assert.Equal(t, "member", gotRole)
		assert.Equal(t, "org1", gotOrgID)
	})

	t.Run("platform admin has no org scope", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"userId": "u2", "role": "super_admin",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "", gotOrgID)
	})
}

func TestRequireMinRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	authed := Auth(testSecret)
	adminOnly := RequireMinRole("admin")

	request := func(role, orgID string) *httptest.ResponseRecorder {
		claims := jwt.MapClaims{
			"userId": "u1", "role": role,
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		if orgID != "" {
			claims["orgId"] = orgID
		}
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		rec := httptest.NewRecorder()
		authed(adminOnly(next)).ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, request("viewer", "org1").Code)
	assert.Equal(t, http.StatusForbidden, request("member", "org1").Code)
	assert.Equal(t, http.StatusOK, request("admin", "").Code)
	assert.Equal(t, http.StatusOK, request("super_admin", "").Code)
}
