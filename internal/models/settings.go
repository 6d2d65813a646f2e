package models

// ── Global Health ────────────────────────────────────────────────

// GlobalHealth is the cross-tenant counter view for the platform
// dashboard (super_admin only).
type GlobalHealth struct {
	TotalOrganizations int               `json:"total_organizations"`
	TotalUsers         int               `json:"total_users"`
	TotalClients       int               `json:"total_clients"`
	TotalPayments      int               `json:"total_payments"`
	Database           map[string]string `json:"database"`
}

// ── Global Settings ──────────────────────────────────────────────

// GlobalSettings holds platform-wide feature-flag configuration. A single
// row in the database; the meta map passes unknown keys through opaquely.
type GlobalSettings struct {
	SignupsEnabled  bool     `json:"signups_enabled"`
	BillingEnabled  bool     `json:"billing_enabled"`
	MaintenanceMode bool     `json:"maintenance_mode"`
	DefaultFeatures []string `json:"default_features"` // granted to new orgs

	Meta map[string]interface{} `json:"meta,omitempty"`

	UpdatedAt string `json:"updated_at"`
}

// UpdateSettingsRequest partially updates global settings.
type UpdateSettingsRequest struct {
	SignupsEnabled  *bool                  `json:"signups_enabled,omitempty"`
	BillingEnabled  *bool                  `json:"billing_enabled,omitempty"`
	MaintenanceMode *bool                  `json:"maintenance_mode,omitempty"`
	DefaultFeatures []string               `json:"default_features,omitempty"`
	Meta            map[string]interface{} `json:"meta,omitempty"`
}
