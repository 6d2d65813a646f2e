package handlers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"sweepos-backend/internal/ctxkeys"
)

// appendOrgScope adds an organization_id filter to a dynamic WHERE clause.
// colExpr is the SQL column expression to filter on (e.g. "c.organization_id").
// Platform-scoped users (admin/super_admin) get no filter.
func appendOrgScope(ctx context.Context, where string, args []interface{}, argIdx int, colExpr string) (string, []interface{}, int) {
	orgID := ctxkeys.GetOrgID(ctx)
	if orgID == "" {
		return where, args, argIdx
	}
	where += fmt.Sprintf(" AND %s = $%d", colExpr, argIdx)
	args = append(args, orgID)
	argIdx++
	return where, args, argIdx
}

// checkOrgAccess verifies that the given organization is within the
// caller's scope.
func checkOrgAccess(ctx context.Context, orgID string) bool {
	scope := ctxkeys.GetOrgID(ctx)
	return scope == "" || scope == orgID
}

// checkClientAccess looks up the client's organization and checks scope.
func checkClientAccess(ctx context.Context, pool *pgxpool.Pool, clientID string) bool {
	if ctxkeys.IsPlatformScope(ctx) {
		return true
	}
	var orgID string
	err := pool.QueryRow(ctx,
		"SELECT organization_id::text FROM clients WHERE id = $1", clientID,
	).Scan(&orgID)
	if err != nil {
		return false
	}
	return checkOrgAccess(ctx, orgID)
}

// resolveOrgID returns the organization a request operates on: the
// caller's own org for tenant users, or the org_id query/body value for
// platform users acting on a specific tenant.
func resolveOrgID(ctx context.Context, explicit string) (string, error) {
	scope := ctxkeys.GetOrgID(ctx)
	if scope != "" {
		return scope, nil
	}
	if explicit == "" {
		return "", fmt.Errorf("organization_id is required for platform-scoped requests")
	}
	return explicit, nil
}
