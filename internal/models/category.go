package models

// Category is a user-owned label shared by transactions and budgets.
// Names are unique per user and compared case-sensitively.
type Category struct {
	Base
	UserID uint   `gorm:"not null;uniqueIndex:idx_categories_user_name,priority:1" json:"user_id"`
	Name   string `gorm:"size:100;not null;uniqueIndex:idx_categories_user_name,priority:2" json:"name"`
}
