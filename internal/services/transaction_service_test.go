package services

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"

	"gorm.io/gorm"
)

func newTransactionService(db *gorm.DB) TransactionServicer {
	return NewTransactionService(db, NewCategoryService(db))
}

func expenseInput(category string, amount int64, d models.Date) TransactionInput {
	return TransactionInput{
		Type:     models.TransactionKindExpense,
		Category: category,
		Amount:   amount,
		Date:     d,
	}
}

func TestCreateTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:        models.TransactionKindIncome,
			Category:    "Salary",
			Amount:      500000,
			Description: "January pay",
			Date:        date(2024, time.January, 31),
		})
		testutil.AssertNoError(t, err)

		if tx.ID == 0 {
			t.Fatal("expected non-zero transaction ID")
		}
		if tx.Category.Name != "Salary" {
			t.Errorf("expected category Salary, got %q", tx.Category.Name)
		}

		stored, err := svc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if stored.Amount != 500000 || stored.Date.String() != "2024-01-31" || stored.Description != "January pay" {
			t.Errorf("unexpected stored transaction %+v", stored)
		}
	})

	t.Run("description_round_trips_unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:        models.TransactionKindExpense,
			Category:    "Food",
			Amount:      1250,
			Description: " lunch ",
			Date:        date(2024, time.January, 5),
		})
		testutil.AssertNoError(t, err)

		listed, err := svc.GetUserTransactions(user.ID)
		testutil.AssertNoError(t, err)
		if len(listed) != 1 || listed[0].ID != tx.ID || listed[0].Description != " lunch " {
			t.Errorf("expected description %q to round-trip, got %+v", " lunch ", listed)
		}
	})

	t.Run("kind_is_normalized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: "expense", Category: "Food", Amount: 100, Date: date(2024, time.March, 1),
		})
		testutil.AssertNoError(t, err)
		if tx.Type != models.TransactionKindExpense {
			t.Errorf("expected Expense, got %s", tx.Type)
		}
	})

	t.Run("invalid_kind", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type: "transfer", Category: "Food", Amount: 100, Date: date(2024, time.March, 1),
		})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, expenseInput("Food", 0, date(2024, time.March, 1)))
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, expenseInput("Food", -100, date(2024, time.March, 1)))
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("empty_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, expenseInput("  ", 100, date(2024, time.March, 1)))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, expenseInput("Food", 100, models.Date{}))
		testutil.AssertAppError(t, err, "INVALID_DATE")
	})

	t.Run("rejected_input_writes_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, _ = svc.CreateTransaction(user.ID, expenseInput("NewCategory", 0, date(2024, time.March, 1)))

		var txCount, catCount int64
		db.Model(&models.Transaction{}).Count(&txCount)
		db.Model(&models.Category{}).Count(&catCount)
		if txCount != 0 || catCount != 0 {
			t.Errorf("expected no rows, got %d transactions and %d categories", txCount, catCount)
		}
	})
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("ordered_newest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		first, err := svc.CreateTransaction(user.ID, expenseInput("Food", 100, date(2024, time.January, 10)))
		testutil.AssertNoError(t, err)
		second, err := svc.CreateTransaction(user.ID, expenseInput("Food", 200, date(2024, time.February, 1)))
		testutil.AssertNoError(t, err)
		sameDay, err := svc.CreateTransaction(user.ID, expenseInput("Food", 300, date(2024, time.February, 1)))
		testutil.AssertNoError(t, err)

		list, err := svc.GetUserTransactions(user.ID)
		testutil.AssertNoError(t, err)
		if len(list) != 3 {
			t.Fatalf("expected 3 transactions, got %d", len(list))
		}
		want := []uint{sameDay.ID, second.ID, first.ID}
		for i, id := range want {
			if list[i].ID != id {
				t.Errorf("position %d: expected id %d, got %d", i, id, list[i].ID)
			}
		}
		if list[0].Category.Name != "Food" {
			t.Errorf("expected category to be loaded, got %q", list[0].Category.Name)
		}
	})

	t.Run("isolated_between_users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user1.ID, expenseInput("Food", 100, date(2024, time.January, 10)))
		testutil.AssertNoError(t, err)

		list, err := svc.GetUserTransactions(user2.ID)
		testutil.AssertNoError(t, err)
		if len(list) != 0 {
			t.Errorf("expected no transactions for other user, got %d", len(list))
		}
	})
}

func TestGetUserTransactionsPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTransactionService(db)
	user := testutil.CreateTestUser(t, db)

	for day := 1; day <= 5; day++ {
		_, err := svc.CreateTransaction(user.ID, expenseInput("Food", int64(day*100), date(2024, time.March, day)))
		testutil.AssertNoError(t, err)
	}
	_, err := svc.CreateTransaction(user.ID, TransactionInput{
		Type: models.TransactionKindIncome, Category: "Salary", Amount: 9000, Date: date(2024, time.March, 3),
	})
	testutil.AssertNoError(t, err)

	t.Run("paginates", func(t *testing.T) {
		page, err := svc.GetUserTransactionsPage(user.ID, pagination.PageRequest{Page: 1, PageSize: 4}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 6 || len(page.Data) != 4 || page.TotalPages != 2 {
			t.Errorf("unexpected page %d items, %d rows, %d pages", page.TotalItems, len(page.Data), page.TotalPages)
		}
	})

	t.Run("filters_by_kind", func(t *testing.T) {
		kind := models.TransactionKindIncome
		page, err := svc.GetUserTransactionsPage(user.ID, pagination.PageRequest{}, TransactionFilter{Type: &kind})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 income, got %d", page.TotalItems)
		}
	})

	t.Run("filters_by_date_range", func(t *testing.T) {
		from := date(2024, time.March, 2)
		to := date(2024, time.March, 4)
		page, err := svc.GetUserTransactionsPage(user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &from, ToDate: &to})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 4 {
			t.Errorf("expected 4 transactions between 2nd and 4th, got %d", page.TotalItems)
		}
	})

	t.Run("filters_by_category", func(t *testing.T) {
		name := "Salary"
		page, err := svc.GetUserTransactionsPage(user.ID, pagination.PageRequest{}, TransactionFilter{Category: &name})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 || page.Data[0].Category.Name != "Salary" {
			t.Errorf("expected the salary transaction, got %d items", page.TotalItems)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("replaces_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, expenseInput("Food", 100, date(2024, time.January, 10)))
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionInput{
			Type:        models.TransactionKindIncome,
			Category:    "Refunds",
			Amount:      250,
			Description: "returned item",
			Date:        date(2024, time.January, 12),
		})
		testutil.AssertNoError(t, err)

		if updated.ID != tx.ID {
			t.Errorf("expected id %d, got %d", tx.ID, updated.ID)
		}
		if updated.Type != models.TransactionKindIncome || updated.Amount != 250 ||
			updated.Category.Name != "Refunds" || updated.Date.String() != "2024-01-12" ||
			updated.Description != "returned item" {
			t.Errorf("unexpected updated transaction %+v", updated)
		}
	})

	t.Run("other_users_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(owner.ID, expenseInput("Food", 100, date(2024, time.January, 10)))
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateTransaction(intruder.ID, tx.ID, expenseInput("Food", 1, date(2024, time.January, 10)))
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		stored, err := svc.GetTransactionByID(owner.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if stored.Amount != 100 {
			t.Errorf("owner's transaction must be unchanged, got amount %d", stored.Amount)
		}
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, expenseInput("Food", 100, date(2024, time.January, 10)))
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateTransaction(user.ID, tx.ID, expenseInput("Food", -5, date(2024, time.January, 10)))
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, expenseInput("Food", 100, date(2024, time.January, 10)))
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))

		_, err = svc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("twice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, expenseInput("Food", 100, date(2024, time.January, 10)))
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))
		testutil.AssertAppError(t, svc.DeleteTransaction(user.ID, tx.ID), "TRANSACTION_NOT_FOUND")
	})

	t.Run("other_users_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(owner.ID, expenseInput("Food", 100, date(2024, time.January, 10)))
		testutil.AssertNoError(t, err)

		testutil.AssertAppError(t, svc.DeleteTransaction(intruder.ID, tx.ID), "TRANSACTION_NOT_FOUND")

		_, err = svc.GetTransactionByID(owner.ID, tx.ID)
		testutil.AssertNoError(t, err)
	})
}
