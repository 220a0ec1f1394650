package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

const maxCategoryNameLength = 100

var errCategoryNameTaken = apperrors.WithMessage(apperrors.ErrInvalidInput, "a category with that name already exists")

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// ResolveCategory finds the user's category by exact (case-sensitive) name
// and creates it if it does not exist yet.
func (s *categoryService) ResolveCategory(tx *gorm.DB, userID uint, name string) (*models.Category, error) {
	if tx == nil {
		tx = s.db
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}

	// Concurrent first uses race on the unique (user_id, name) index; the
	// loser's insert is a no-op and both read the surviving row.
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Category{UserID: userID, Name: name}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var category models.Category
	if err := tx.Where("user_id = ? AND name = ?", userID, name).First(&category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// GetUserCategories lists a user's categories by name.
func (s *categoryService) GetUserCategories(userID uint) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID, scoped to the user.
func (s *categoryService) GetCategoryByID(userID, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory renames one of the user's categories. Every transaction and
// budget that references it follows the new name.
func (s *categoryService) UpdateCategory(userID, categoryID uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category must be at most 100 characters")
	}

	var category models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if category.Name == name {
			return nil
		}

		var taken int64
		if err := tx.Model(&models.Category{}).
			Where("user_id = ? AND name = ? AND id <> ?", userID, name, categoryID).
			Count(&taken).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if taken > 0 {
			return errCategoryNameTaken
		}

		if err := tx.Model(&category).Update("name", name).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errCategoryNameTaken
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		category.Name = name
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}
