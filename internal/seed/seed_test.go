package seed

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/auth"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/testutil"
)

func init() {
	logger.Init("test")
	auth.Cost = bcrypt.MinCost
}

func TestRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	result, err := Run(db, Options{Users: 2, TransactionsPerUser: 10, Months: 3, Seed: 7, Now: now})
	testutil.AssertNoError(t, err)

	if len(result.Usernames) != 2 {
		t.Fatalf("expected 2 users, got %d", len(result.Usernames))
	}
	// 3 salaries + 10 expenses per user.
	if result.Transactions != 26 {
		t.Errorf("expected 26 transactions, got %d", result.Transactions)
	}
	if result.Budgets != 6 {
		t.Errorf("expected 6 budgets, got %d", result.Budgets)
	}

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	if count != 26 {
		t.Errorf("expected 26 stored transactions, got %d", count)
	}

	var outOfRange int64
	db.Model(&models.Transaction{}).
		Where("date < ? OR date > ?", models.NewDate(2024, time.January, 1), models.NewDate(2024, time.March, 15)).
		Count(&outOfRange)
	if outOfRange != 0 {
		t.Errorf("expected every transaction within the seeded months, got %d outside", outOfRange)
	}

	users := services.NewUserService(db)
	for _, username := range result.Usernames {
		if _, err := users.Authenticate(username, DefaultPassword); err != nil {
			t.Errorf("seeded user %s cannot log in: %v", username, err)
		}
	}

	check, err := services.NewBudgetService(db, services.NewCategoryService(db)).CheckBudgets(1)
	testutil.AssertNoError(t, err)
	if len(check.Statuses) != 3 {
		t.Errorf("expected 3 budget statuses, got %d", len(check.Statuses))
	}
}

func TestRunIsDeterministic(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	opts := Options{Users: 2, TransactionsPerUser: 1, Months: 1, Seed: 42, Now: now}

	first, err := Run(testutil.SetupTestDB(t), opts)
	testutil.AssertNoError(t, err)
	second, err := Run(testutil.SetupTestDB(t), opts)
	testutil.AssertNoError(t, err)

	for i := range first.Usernames {
		if first.Usernames[i] != second.Usernames[i] {
			t.Errorf("user %d: %s != %s", i, first.Usernames[i], second.Usernames[i])
		}
	}
}
