package models

import "time"

// User represents a registered user of the tracker
type User struct {
	Base
	Username     string        `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password     string        `gorm:"not null" json:"-"`
	LastLoginAt  *time.Time    `json:"last_login_at,omitempty"`
	Categories   []Category    `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	Budgets      []Budget      `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
}
