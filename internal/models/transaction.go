package models

import "strings"

// TransactionKind represents the kind of transaction
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "Income"
	TransactionKindExpense TransactionKind = "Expense"
)

// Valid reports whether k is one of the supported kinds.
func (k TransactionKind) Valid() bool {
	return k == TransactionKindIncome || k == TransactionKindExpense
}

// ParseTransactionKind accepts "income", "EXPENSE", " Expense " and similar
// spellings and returns the canonical kind.
func ParseTransactionKind(s string) (TransactionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return TransactionKindIncome, true
	case "expense":
		return TransactionKindExpense, true
	}
	return "", false
}

// Transaction represents a single income or expense entry
type Transaction struct {
	Base
	UserID      uint            `gorm:"not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Type        TransactionKind `gorm:"column:type;size:7;not null" json:"type"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Description string          `gorm:"size:500" json:"description"`
	Date        Date            `gorm:"type:date;not null;index:idx_transactions_user_date,priority:2" json:"date"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
