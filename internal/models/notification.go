package models

// Notification is an in-app alert for a user, generated by the background
// notifier (program completions) or by write operations.
type Notification struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Type       string  `json:"type"` // e.g. "program_ending", "program_complete"
	EntityType *string `json:"entity_type,omitempty"`
	EntityID   *string `json:"entity_id,omitempty"`
	IsRead     bool    `json:"is_read"`
	CreatedAt  string  `json:"created_at"`
}

// ActivityEntry is one row of the audit trail written alongside mutating
// operations.
type ActivityEntry struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"user_id"`
	UserName   *string                `json:"user_name,omitempty"`
	Action     string                 `json:"action"` // e.g. "created_client"
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Details    map[string]interface{} `json:"details,omitempty"`
	CreatedAt  string                 `json:"created_at"`
}
