package models

import (
	"strings"

	"sweepos-backend/internal/ctxkeys"
)

// User represents an authenticated user. viewer/member users belong to an
// organization; admin/super_admin operate platform-wide (no org).
type User struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	PasswordHash   string  `json:"-"` // Never expose in JSON responses
	Name           string  `json:"name"`
	Role           string  `json:"role"`
	OrganizationID *string `json:"organization_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// RegisterRequest contains the fields needed to create a new account.
// All new users are registered as "viewer" within an existing org.
// Elevated roles are granted via User Management.
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
}

// Validate checks that all required registration fields are present.
func (r *RegisterRequest) Validate() map[string]string {
	errors := map[string]string{}

	if r.Email == "" || !strings.Contains(r.Email, "@") {
		errors["email"] = "A valid email is required"
	}
	if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.OrganizationID == "" {
		errors["organization_id"] = "Organization is required"
	}

	return errors
}

// LoginRequest contains the credentials for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that login credentials are present.
func (r *LoginRequest) Validate() map[string]string {
	errors := map[string]string{}

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

// UpdateRoleRequest is used by admins to change a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// Validate checks that the role is one of the allowed values.
func (r *UpdateRoleRequest) Validate() map[string]string {
	errors := map[string]string{}
	if !ctxkeys.ValidRoles[r.Role] {
		errors["role"] = "Role must be 'viewer', 'member', 'admin', or 'super_admin'"
	}
	return errors
}

// AuthResponse is sent back after successful login/registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
