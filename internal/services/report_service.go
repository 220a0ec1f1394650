package services

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
)

// reportService aggregates transactions into monthly and yearly reports.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// ParseReportPeriod parses a month ("1" or "01") and a four digit year.
func ParseReportPeriod(monthText, yearText string) (month, year int, err error) {
	monthText = strings.TrimSpace(monthText)
	yearText = strings.TrimSpace(yearText)

	if len(monthText) < 1 || len(monthText) > 2 || !isDigits(monthText) {
		return 0, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be a number from 1 to 12")
	}
	month, convErr := strconv.Atoi(monthText)
	if convErr != nil {
		return 0, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be a number from 1 to 12")
	}
	if len(yearText) != 4 || !isDigits(yearText) {
		return 0, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "year must have four digits")
	}
	year, convErr = strconv.Atoi(yearText)
	if convErr != nil {
		return 0, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "year must have four digits")
	}
	if err := validateReportPeriod(month, year); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

// isDigits reports whether s is made only of ASCII digits. strconv.Atoi
// would also take a leading sign.
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateReportPeriod(month, year int) error {
	if month < 1 || month > 12 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be a number from 1 to 12")
	}
	if year < 1000 || year > 9999 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "year must have four digits")
	}
	return nil
}

type kindTotalRow struct {
	Type  models.TransactionKind
	Total int64
}

type categoryTotalRow struct {
	Category string
	Total    int64
}

// GenerateReport summarizes the given month and its calendar year.
func (s *reportService) GenerateReport(userID uint, month, year int) (*Report, error) {
	if err := validateReportPeriod(month, year); err != nil {
		return nil, err
	}

	monthStart := models.NewDate(year, time.Month(month), 1)
	monthEnd := monthStart.AddDate(0, 1, 0)
	yearStart := models.NewDate(year, time.January, 1)
	yearEnd := yearStart.AddDate(1, 0, 0)

	monthly, err := s.totals(userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	yearly, err := s.totals(userID, yearStart, yearEnd)
	if err != nil {
		return nil, err
	}

	var rows []categoryTotalRow
	if err := s.db.Table("transactions AS t").
		Select("c.name AS category, SUM(t.amount) AS total").
		Joins("JOIN categories AS c ON c.id = t.category_id").
		Where("t.user_id = ? AND t.type = ? AND t.date >= ? AND t.date < ?",
			userID, models.TransactionKindExpense, monthStart, monthEnd).
		Group("c.id, c.name").
		Order("total DESC").Order("c.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	breakdown := make([]CategoryAmount, 0, len(rows))
	for _, row := range rows {
		breakdown = append(breakdown, CategoryAmount{
			Category:   row.Category,
			Amount:     row.Total,
			Percentage: money.Percent(row.Total, monthly.Expense),
		})
	}

	return &Report{
		Year:              year,
		Month:             month,
		Monthly:           monthly,
		Yearly:            yearly,
		CategoryBreakdown: breakdown,
	}, nil
}

// totals sums income and expense over [from, to).
func (s *reportService) totals(userID uint, from, to models.Date) (Totals, error) {
	var rows []kindTotalRow
	if err := s.db.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Group("type").
		Scan(&rows).Error; err != nil {
		return Totals{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var t Totals
	for _, row := range rows {
		switch row.Type {
		case models.TransactionKindIncome:
			t.Income = row.Total
		case models.TransactionKindExpense:
			t.Expense = row.Total
		}
	}
	t.Savings = t.Income - t.Expense
	return t, nil
}
