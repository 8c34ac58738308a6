package domain

import "time"

// Notification is an in-app record surfaced by the UI collaborators.
// Delivery transport (email, SMS) is handled separately.
type Notification struct {
	ID         int32             `json:"id"`
	TenantID   string            `json:"tenant_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}
