// Package seed fills a database with realistic fake users, transactions and
// budgets for demos and manual testing.
package seed

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"

	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/services"
)

// DefaultPassword is given to every seeded user.
const DefaultPassword = "password123"

var expenseCategories = []string{"Food", "Rent", "Transport", "Utilities", "Entertainment", "Health", "Shopping"}

// Options controls how much data is generated.
type Options struct {
	Users               int
	TransactionsPerUser int
	Months              int
	Seed                int64
	Password            string
	Now                 time.Time
}

func (o *Options) defaults() {
	if o.Users <= 0 {
		o.Users = 3
	}
	if o.TransactionsPerUser <= 0 {
		o.TransactionsPerUser = 40
	}
	if o.Months <= 0 {
		o.Months = 3
	}
	if o.Password == "" {
		o.Password = DefaultPassword
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
}

// Result summarizes what was created.
type Result struct {
	Usernames    []string
	Transactions int
	Budgets      int
}

// Run generates data through the regular services so every row passes the
// same validation as user input.
func Run(db *gorm.DB, opts Options) (*Result, error) {
	opts.defaults()
	faker := gofakeit.New(opts.Seed)

	categories := services.NewCategoryService(db)
	users := services.NewUserService(db)
	transactions := services.NewTransactionService(db, categories)
	budgets := services.NewBudgetService(db, categories)

	today := models.DateOf(opts.Now)
	start := today.FirstOfMonth().AddDate(0, -(opts.Months - 1), 0)

	result := &Result{}
	for i := 0; i < opts.Users; i++ {
		username := fmt.Sprintf("%s%d", faker.Username(), i+1)
		user, err := users.CreateUser(username, opts.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", username, err)
		}
		result.Usernames = append(result.Usernames, user.Username)

		// A salary on the first of every month.
		salary := randomCents(faker, 3000, 9000)
		for d := start; !today.Before(d); d = d.AddDate(0, 1, 0) {
			if _, err := transactions.CreateTransaction(user.ID, services.TransactionInput{
				Type:        models.TransactionKindIncome,
				Category:    "Salary",
				Amount:      salary,
				Description: faker.Company(),
				Date:        d,
			}); err != nil {
				return nil, fmt.Errorf("failed to create salary for %s: %w", username, err)
			}
			result.Transactions++
		}

		for j := 0; j < opts.TransactionsPerUser; j++ {
			date := models.DateOf(faker.DateRange(start.Time(), today.Time()).UTC())
			if _, err := transactions.CreateTransaction(user.ID, services.TransactionInput{
				Type:        models.TransactionKindExpense,
				Category:    faker.RandomString(expenseCategories),
				Amount:      randomCents(faker, 1, 300),
				Description: faker.Sentence(4),
				Date:        date,
			}); err != nil {
				return nil, fmt.Errorf("failed to create expense for %s: %w", username, err)
			}
			result.Transactions++
		}

		for _, category := range pickCategories(faker, 3) {
			if _, err := budgets.SetBudget(user.ID, category, randomCents(faker, 200, 1500)); err != nil {
				return nil, fmt.Errorf("failed to set budget for %s: %w", username, err)
			}
			result.Budgets++
		}
	}

	logger.Get().Infow("database seeded",
		"users", len(result.Usernames),
		"transactions", result.Transactions,
		"budgets", result.Budgets,
	)
	return result, nil
}

// randomCents returns a whole-cent amount between min and max currency units.
func randomCents(faker *gofakeit.Faker, min, max float64) int64 {
	cents, err := money.Parse(fmt.Sprintf("%.2f", faker.Price(min, max)))
	if err != nil {
		return int64(min * 100)
	}
	return cents
}

func pickCategories(faker *gofakeit.Faker, n int) []string {
	shuffled := append([]string(nil), expenseCategories...)
	faker.ShuffleStrings(shuffled)
	return shuffled[:n]
}
