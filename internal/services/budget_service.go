package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db              *gorm.DB
	categoryService CategoryServicer
	now             func() time.Time
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, categoryService CategoryServicer) BudgetServicer {
	return &budgetService{db: db, categoryService: categoryService, now: time.Now}
}

// SetBudget creates the user's budget for a category or replaces its amount.
func (s *budgetService) SetBudget(userID uint, category string, amount int64) (*models.Budget, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if amount > money.MaxCents {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount is too large")
	}

	var categoryID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cat, err := s.categoryService.ResolveCategory(tx, userID, category)
		if err != nil {
			return err
		}
		categoryID = cat.ID

		budget := models.Budget{UserID: userID, CategoryID: cat.ID, Amount: amount}
		if err := tx.Omit("Category").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).Create(&budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The row id reported by an upsert is driver dependent; read it back.
	var budget models.Budget
	if err := s.db.Preload("Category").
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		First(&budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetUserBudgets lists the user's budgets ordered by category name.
func (s *budgetService) GetUserBudgets(userID uint) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := s.db.Preload("Category").
		Joins("JOIN categories ON categories.id = budgets.category_id").
		Where("budgets.user_id = ?", userID).
		Order("categories.name ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

type budgetSpendRow struct {
	Category     string
	BudgetAmount int64
	SpentAmount  int64
}

// CheckBudgets compares every budget with the expenses recorded in its
// category from the first of the current month through today.
func (s *budgetService) CheckBudgets(userID uint) (*BudgetCheck, error) {
	today := models.DateOf(s.now())
	periodStart := today.FirstOfMonth()

	var rows []budgetSpendRow
	err := s.db.Table("budgets AS b").
		Select("c.name AS category, b.amount AS budget_amount, COALESCE(SUM(t.amount), 0) AS spent_amount").
		Joins("JOIN categories AS c ON c.id = b.category_id").
		Joins("LEFT JOIN transactions AS t ON t.category_id = b.category_id AND t.user_id = b.user_id AND t.type = ? AND t.date >= ? AND t.date <= ?",
			models.TransactionKindExpense, periodStart, today).
		Where("b.user_id = ?", userID).
		Group("b.id, c.name, b.amount").
		Order("c.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(rows) == 0 {
		return nil, apperrors.ErrNoBudgets
	}

	check := &BudgetCheck{
		PeriodStart:     periodStart,
		AsOf:            today,
		Statuses:        make([]BudgetStatus, 0, len(rows)),
		AllWithinLimits: true,
	}
	for _, row := range rows {
		status := BudgetStatus{
			Category:     row.Category,
			BudgetAmount: row.BudgetAmount,
			SpentAmount:  row.SpentAmount,
			Remaining:    row.BudgetAmount - row.SpentAmount,
			Percentage:   money.Percent(row.SpentAmount, row.BudgetAmount),
			Exceeded:     row.SpentAmount > row.BudgetAmount,
		}
		if status.Exceeded {
			check.AllWithinLimits = false
		}
		check.Statuses = append(check.Statuses, status)
	}
	return check, nil
}
