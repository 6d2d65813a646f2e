package models

import (
	"time"

	"github.com/shopspring/decimal"

	"sweepos-backend/internal/crm"
	"sweepos-backend/internal/money"
)

// ── Client ───────────────────────────────────────────────────────

// Client is a tenant's customer/lead record. Field names form the wire
// contract with the admin frontend — snake_case, with pointer fields for
// nullable columns.
type Client struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organization_id"`
	Name           string   `json:"name"`
	Email          *string  `json:"email"`
	Emails         []string `json:"emails"`
	Phone          *string  `json:"phone,omitempty"`
	Instagram      *string  `json:"instagram,omitempty"`

	// One of: cold_lead, warm_lead, active, offboarding, dead.
	LifecycleState string `json:"lifecycle_state"`

	// EstimatedMRRCents is the source of truth; EstimatedMRR is derived
	// on every read and never stored.
	EstimatedMRRCents int64           `json:"estimated_mrr_cents"`
	EstimatedMRR      decimal.Decimal `json:"estimated_mrr"`
	Currency          string          `json:"currency"`

	// Program tracking window. End date and progress are derived.
	ProgramStartDate     *string `json:"program_start_date,omitempty"` // YYYY-MM-DD
	ProgramDurationWeeks *int    `json:"program_duration_weeks,omitempty"`

	// Meta is an open key/value map. Unknown keys are passed through
	// opaquely; known keys are documented on the frontend.
	Meta map[string]interface{} `json:"meta,omitempty"`

	StripeCustomerID *string `json:"stripe_customer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeriveMRR fills the decimal MRR field from cents.
func (c *Client) DeriveMRR() {
	c.EstimatedMRR = money.FromCents(c.EstimatedMRRCents, c.Currency).Decimal()
}

// ClientWithProgram extends Client with program fields that are COMPUTED
// on every read — never stored in the database.
type ClientWithProgram struct {
	Client

	ProgramEndDate         *string  `json:"program_end_date,omitempty"`
	ProgramProgressPercent *float64 `json:"program_progress_percent,omitempty"` // [0,100]
	ProgramDaysRemaining   *int     `json:"program_days_remaining,omitempty"`
}

// ── Create / Update Requests ─────────────────────────────────────

// CreateClientRequest holds the fields for creating a new client.
type CreateClientRequest struct {
	Name                 string                 `json:"name"`
	Email                *string                `json:"email,omitempty"`
	Emails               []string               `json:"emails,omitempty"`
	Phone                *string                `json:"phone,omitempty"`
	Instagram            *string                `json:"instagram,omitempty"`
	LifecycleState       string                 `json:"lifecycle_state,omitempty"`
	EstimatedMRRCents    *int64                 `json:"estimated_mrr_cents,omitempty"`
	Currency             string                 `json:"currency,omitempty"`
	ProgramStartDate     *string                `json:"program_start_date,omitempty"`
	ProgramDurationWeeks *int                   `json:"program_duration_weeks,omitempty"`
	Meta                 map[string]interface{} `json:"meta,omitempty"`
	StripeCustomerID     *string                `json:"stripe_customer_id,omitempty"`
}

// Validate checks if the create request contains valid data.
func (r *CreateClientRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if len(r.Name) < 2 || len(r.Name) > 200 {
		errors["name"] = "Name must be between 2 and 200 characters"
	}
	if r.LifecycleState != "" && !crm.IsValidLifecycleState(r.LifecycleState) {
		errors["lifecycle_state"] = "Lifecycle state must be one of: cold_lead, warm_lead, active, offboarding, dead"
	}
	if r.EstimatedMRRCents != nil && *r.EstimatedMRRCents < 0 {
		errors["estimated_mrr_cents"] = "Estimated MRR cannot be negative"
	}
	if r.ProgramStartDate != nil {
		if _, err := time.Parse("2006-01-02", *r.ProgramStartDate); err != nil {
			errors["program_start_date"] = "Program start date must be YYYY-MM-DD"
		}
		if r.ProgramDurationWeeks == nil || *r.ProgramDurationWeeks <= 0 {
			errors["program_duration_weeks"] = "Program duration (weeks) is required when a start date is set"
		}
	}

	return errors
}

// UpdateClientRequest holds the fields that can be partially updated.
type UpdateClientRequest struct {
	Name                 *string                `json:"name,omitempty"`
	Email                *string                `json:"email,omitempty"`
	Emails               []string               `json:"emails,omitempty"`
	Phone                *string                `json:"phone,omitempty"`
	Instagram            *string                `json:"instagram,omitempty"`
	LifecycleState       *string                `json:"lifecycle_state,omitempty"`
	EstimatedMRRCents    *int64                 `json:"estimated_mrr_cents,omitempty"`
	Currency             *string                `json:"currency,omitempty"`
	ProgramStartDate     *string                `json:"program_start_date,omitempty"`
	ProgramDurationWeeks *int                   `json:"program_duration_weeks,omitempty"`
	Meta                 map[string]interface{} `json:"meta,omitempty"`
	StripeCustomerID     *string                `json:"stripe_customer_id,omitempty"`
}

// Validate checks the update request.
func (r *UpdateClientRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name != nil && (len(*r.Name) < 2 || len(*r.Name) > 200) {
		errors["name"] = "Name must be between 2 and 200 characters"
	}
	if r.LifecycleState != nil && !crm.IsValidLifecycleState(*r.LifecycleState) {
		errors["lifecycle_state"] = "Lifecycle state must be one of: cold_lead, warm_lead, active, offboarding, dead"
	}
	if r.EstimatedMRRCents != nil && *r.EstimatedMRRCents < 0 {
		errors["estimated_mrr_cents"] = "Estimated MRR cannot be negative"
	}
	if r.ProgramStartDate != nil {
		if _, err := time.Parse("2006-01-02", *r.ProgramStartDate); err != nil {
			errors["program_start_date"] = "Program start date must be YYYY-MM-DD"
		}
	}
	if r.ProgramDurationWeeks != nil && *r.ProgramDurationWeeks <= 0 {
		errors["program_duration_weeks"] = "Program duration must be positive"
	}

	return errors
}
