package models

// Budget is the spending limit a user declares for one category.
// There is at most one budget per (user, category).
type Budget struct {
	Base
	UserID     uint  `gorm:"not null;index:idx_budgets_user;uniqueIndex:idx_budgets_user_category,priority:1" json:"user_id"`
	CategoryID uint  `gorm:"not null;uniqueIndex:idx_budgets_user_category,priority:2" json:"category_id"`
	Amount     int64 `gorm:"type:bigint;not null" json:"amount"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
