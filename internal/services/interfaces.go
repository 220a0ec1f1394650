package services

import (
	"gorm.io/gorm"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, password string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	Authenticate(username, password string) (*models.User, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	// ResolveCategory returns the user's category with the given name,
	// creating it on first use. tx may be nil to use the service's handle.
	ResolveCategory(tx *gorm.DB, userID uint, name string) (*models.Category, error)
	GetUserCategories(userID uint) ([]models.Category, error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, name string) (*models.Category, error)
}

// TransactionInput carries the user-editable fields of a transaction.
// Create and Update both take a full replacement set.
type TransactionInput struct {
	Type        models.TransactionKind
	Category    string
	Amount      int64
	Description string
	Date        models.Date
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *models.Date
	ToDate   *models.Date
	Type     *models.TransactionKind
	Category *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID uint) ([]models.Transaction, error)
	GetUserTransactionsPage(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// BudgetStatus compares one budget with the current month's spending.
type BudgetStatus struct {
	Category     string  `json:"category"`
	BudgetAmount int64   `json:"budget_amount"`
	SpentAmount  int64   `json:"spent_amount"`
	Remaining    int64   `json:"remaining"`
	Percentage   float64 `json:"percentage"`
	Exceeded     bool    `json:"exceeded"`
}

// BudgetCheck is the result of checking every budget a user has set.
type BudgetCheck struct {
	PeriodStart     models.Date    `json:"period_start"`
	AsOf            models.Date    `json:"as_of"`
	Statuses        []BudgetStatus `json:"statuses"`
	AllWithinLimits bool           `json:"all_within_limits"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	SetBudget(userID uint, category string, amount int64) (*models.Budget, error)
	GetUserBudgets(userID uint) ([]models.Budget, error)
	CheckBudgets(userID uint) (*BudgetCheck, error)
}

// Totals are the income, expense and savings sums over a period.
type Totals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Savings int64 `json:"savings"`
}

// CategoryAmount is one row of the monthly expense breakdown.
type CategoryAmount struct {
	Category   string  `json:"category"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Report summarizes a month and its year.
type Report struct {
	Year              int              `json:"year"`
	Month             int              `json:"month"`
	Monthly           Totals           `json:"monthly"`
	Yearly            Totals           `json:"yearly"`
	CategoryBreakdown []CategoryAmount `json:"category_breakdown"`
}

// ReportServicer defines the contract for report generation.
type ReportServicer interface {
	GenerateReport(userID uint, month, year int) (*Report, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, source string, changes map[string]interface{})
}
