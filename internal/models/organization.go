package models

import "strings"

// ── Organization ─────────────────────────────────────────────────

// Organization is a tenant account. Aggregate counts are present only on
// list/detail endpoints that compute them. Admin bootstrap credentials are
// NEVER carried on this type — see OrganizationCreated.
type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"` // default currency for clients
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	ClientCount *int `json:"client_count,omitempty"`
	UserCount   *int `json:"user_count,omitempty"`

	// Feature keys enabled for this tenant (gated frontend tabs).
	Features []string `json:"features,omitempty"`
}

// OrganizationCreated is returned ONLY from the creation endpoint. It is
// the single place the bootstrap admin credentials appear; the password is
// generated server-side and stored only as a bcrypt hash.
type OrganizationCreated struct {
	Organization
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// ── Requests ─────────────────────────────────────────────────────

// CreateOrganizationRequest provisions a new tenant with a bootstrap
// admin user.
type CreateOrganizationRequest struct {
	Name       string   `json:"name"`
	Currency   string   `json:"currency,omitempty"`
	AdminEmail string   `json:"admin_email"`
	Features   []string `json:"features,omitempty"`
}

// Validate checks required fields for a new organization.
func (r *CreateOrganizationRequest) Validate() map[string]string {
	errors := map[string]string{}
	if len(r.Name) < 2 {
		errors["name"] = "Organization name is required (min 2 characters)"
	}
	if r.AdminEmail == "" || !strings.Contains(r.AdminEmail, "@") {
		errors["admin_email"] = "A valid admin email is required"
	}
	return errors
}

// UpdateOrganizationRequest modifies tenant details.
type UpdateOrganizationRequest struct {
	Name     *string  `json:"name,omitempty"`
	Currency *string  `json:"currency,omitempty"`
	Features []string `json:"features,omitempty"`
}

// Validate checks the update request.
func (r *UpdateOrganizationRequest) Validate() map[string]string {
	errors := map[string]string{}
	if r.Name != nil && len(*r.Name) < 2 {
		errors["name"] = "Organization name must be at least 2 characters"
	}
	return errors
}
