// Package ctxkeys defines typed context keys shared between middleware and
// handlers. Both import this package, neither imports the other, which
// keeps the dependency graph acyclic.
package ctxkeys

import "context"

// Key is a typed string used as context key to prevent collisions.
type Key string

const (
	UserID   Key = "userID"
	UserRole Key = "userRole"
	OrgID    Key = "orgID"
)

// GetOrgID returns the organization the current user belongs to.
// Empty string means platform scope (admin/super_admin): no tenant filter.
func GetOrgID(ctx context.Context) string {
	v, _ := ctx.Value(OrgID).(string)
	return v
}

// IsPlatformScope reports whether the user operates across all tenants.
func IsPlatformScope(ctx context.Context) bool {
	return GetOrgID(ctx) == ""
}

// GetUserID returns the authenticated user's ID, or "" when unauthenticated.
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(UserID).(string)
	return v
}

// GetUserRole returns the authenticated user's role, or "" when unauthenticated.
func GetUserRole(ctx context.Context) string {
	v, _ := ctx.Value(UserRole).(string)
	return v
}

// ValidRoles lists all valid role strings.
var ValidRoles = map[string]bool{
	"viewer":      true,
	"member":      true,
	"admin":       true,
	"super_admin": true,
}

// RoleLevel maps role names to permission levels.
// viewer/member are tenant-scoped; admin/super_admin are platform-wide.
var RoleLevel = map[string]int{
	"viewer":      1,
	"member":      2,
	"admin":       3,
	"super_admin": 4,
}
