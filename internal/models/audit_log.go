package models

// AuditLog records every mutation a user makes to their ledger or budgets.
type AuditLog struct {
	Base
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   uint   `json:"resource_id"`
	Source       string `json:"source"`
	Changes      string `json:"changes,omitempty"`
}
