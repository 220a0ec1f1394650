package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
)

const maxDescriptionLength = 500

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	categoryService CategoryServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, categoryService CategoryServicer) TransactionServicer {
	return &transactionService{
		db:              db,
		categoryService: categoryService,
	}
}

// validateTransactionInput normalizes and checks the fields shared by create
// and update. It never touches storage.
func validateTransactionInput(input TransactionInput) (TransactionInput, error) {
	kind, ok := models.ParseTransactionKind(string(input.Type))
	if !ok {
		return input, apperrors.ErrInvalidTransactionType
	}
	input.Type = kind

	input.Category = strings.TrimSpace(input.Category)
	if input.Category == "" {
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}

	if input.Amount <= 0 {
		return input, apperrors.ErrInvalidAmount
	}
	if input.Amount > money.MaxCents {
		return input, apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount is too large")
	}

	if input.Date.IsZero() {
		return input, apperrors.ErrInvalidDate
	}

	if utf8.RuneCountInString(input.Description) > maxDescriptionLength {
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 500 characters")
	}

	return input, nil
}

// CreateTransaction records a new income or expense for a user.
func (s *transactionService) CreateTransaction(userID uint, input TransactionInput) (*models.Transaction, error) {
	input, err := validateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	var transaction *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		category, err := s.categoryService.ResolveCategory(tx, userID, input.Category)
		if err != nil {
			return err
		}

		transaction = &models.Transaction{
			UserID:      userID,
			CategoryID:  category.ID,
			Type:        input.Type,
			Amount:      input.Amount,
			Description: input.Description,
			Date:        input.Date,
		}
		if err := tx.Omit("Category").Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		transaction.Category = *category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetUserTransactions returns all of a user's transactions, newest first.
func (s *transactionService) GetUserTransactions(userID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("date DESC").Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetUserTransactionsPage retrieves a paginated, filtered list of a user's transactions.
func (s *transactionService) GetUserTransactionsPage(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order("transactions.date DESC").Order("transactions.id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("transactions.date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("transactions.date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("transactions.type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("transactions.category_id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Model(&models.Category{}).
				Select("id").
				Where("name = ?", *f.Category))
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction replaces every editable field of a user's transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, input TransactionInput) (*models.Transaction, error) {
	input, err := validateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Transaction
		if err := tx.Where("id = ? AND user_id = ?", transactionID, userID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		category, err := s.categoryService.ResolveCategory(tx, userID, input.Category)
		if err != nil {
			return err
		}

		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"category_id": category.ID,
			"type":        input.Type,
			"amount":      input.Amount,
			"description": input.Description,
			"date":        input.Date,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction permanently removes a user's transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrTransactionNotFound
		}
		return nil
	})
}
