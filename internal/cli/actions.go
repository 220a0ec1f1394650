package cli

import (
	"errors"
	"strconv"
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

const minPasswordLength = 8

func (a *App) register() error {
	a.println("\n=== Register ===")
	username, err := a.prompt("Enter a username: ")
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		a.println("Username cannot be empty.")
		return nil
	}

	password, err := a.readPassword("Enter a password: ")
	if err != nil {
		return err
	}
	confirmation, err := a.readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirmation {
		a.println("Passwords do not match. Please try again.")
		return nil
	}
	if len(password) < minPasswordLength {
		a.println("Password must be at least 8 characters long.")
		return nil
	}

	if _, err := a.users.CreateUser(username, password); err != nil {
		return err
	}
	a.println("Registration successful! You can now log in.")
	return nil
}

func (a *App) login() (*session.Session, error) {
	a.println("\n=== Login ===")
	username, err := a.prompt("Enter your username: ")
	if err != nil {
		return nil, err
	}
	password, err := a.readPassword("Enter your password: ")
	if err != nil {
		return nil, err
	}

	user, err := a.users.Authenticate(strings.TrimSpace(username), password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			a.println("Invalid username or password. Please try again.")
			return nil, nil
		}
		return nil, err
	}

	s := session.New(user)
	logger.Get().Infow("user logged in", "user_id", s.UserID, "username", s.Username, "session_id", s.ID)
	a.printf("Welcome back, %s!\n", s.Username)
	return s, nil
}

// readTransactionInput asks for every transaction field. Kind, amount and
// date are asked again until valid; an empty category aborts.
func (a *App) readTransactionInput(prefix string) (*services.TransactionInput, error) {
	var input services.TransactionInput

	for {
		text, err := a.prompt("Enter " + prefix + "transaction type (Income/Expense): ")
		if err != nil {
			return nil, err
		}
		if kind, ok := models.ParseTransactionKind(text); ok {
			input.Type = kind
			break
		}
		a.println("Invalid transaction type. Please enter 'Income' or 'Expense'.")
	}

	label := "Enter category (e.g., Food, Rent, Salary): "
	if prefix != "" {
		label = "Enter " + prefix + "category: "
	}
	category, err := a.prompt(label)
	if err != nil {
		return nil, err
	}
	input.Category = strings.TrimSpace(category)
	if input.Category == "" {
		a.println("Category cannot be empty.")
		return nil, nil
	}

	for {
		text, err := a.prompt("Enter " + prefix + "amount: ")
		if err != nil {
			return nil, err
		}
		cents, err := money.Parse(text)
		if err == nil {
			input.Amount = cents
			break
		}
		a.printf("Invalid amount: %v\n", err)
	}

	label = "Enter description (optional): "
	if prefix != "" {
		label = "Enter " + prefix + "description: "
	}
	if input.Description, err = a.prompt(label); err != nil {
		return nil, err
	}

	for {
		text, err := a.prompt("Enter " + prefix + "date (YYYY-MM-DD): ")
		if err != nil {
			return nil, err
		}
		date, err := models.ParseDate(text)
		if err == nil {
			input.Date = date
			break
		}
		a.println(apperrors.ErrInvalidDate.Message)
	}

	return &input, nil
}

func (a *App) addTransaction(s *session.Session) error {
	a.println("\n=== Add Transaction ===")
	input, err := a.readTransactionInput("")
	if err != nil || input == nil {
		return err
	}

	tx, err := a.transactions.CreateTransaction(s.UserID, *input)
	if err != nil {
		return err
	}
	a.audit.Log(s.UserID, services.AuditCreateTransaction, "transaction", tx.ID, auditSource, transactionChanges(input))
	a.println("Transaction added successfully!")
	return nil
}

func (a *App) viewTransactions(s *session.Session) error {
	a.println("\n=== View Transactions ===")
	transactions, err := a.transactions.GetUserTransactions(s.UserID)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		a.println("No transactions found.")
		return nil
	}
	for _, tx := range transactions {
		a.printf("ID: %d | Type: %s | Category: %s | Amount: %s | Description: %s | Date: %s\n",
			tx.ID, tx.Type, tx.Category.Name, money.String(tx.Amount), tx.Description, tx.Date)
	}
	return nil
}

// readTransactionID lists the user's transactions and asks for one of them.
// ok is false when the input was not a number.
func (a *App) readTransactionID(s *session.Session, action string) (id uint, ok bool, err error) {
	if err := a.viewTransactions(s); err != nil {
		return 0, false, err
	}
	text, err := a.prompt("Enter the transaction ID to " + action + ": ")
	if err != nil {
		return 0, false, err
	}
	n, convErr := strconv.ParseUint(strings.TrimSpace(text), 10, 32)
	if convErr != nil || n == 0 {
		a.println("Invalid transaction ID.")
		return 0, false, nil
	}
	return uint(n), true, nil
}

func (a *App) updateTransaction(s *session.Session) error {
	a.println("\n=== Update Transaction ===")
	id, ok, err := a.readTransactionID(s, "update")
	if err != nil || !ok {
		return err
	}

	// Fail before asking for new values.
	if _, err := a.transactions.GetTransactionByID(s.UserID, id); err != nil {
		return err
	}

	input, err := a.readTransactionInput("new ")
	if err != nil || input == nil {
		return err
	}
	if _, err := a.transactions.UpdateTransaction(s.UserID, id, *input); err != nil {
		return err
	}
	a.audit.Log(s.UserID, services.AuditUpdateTransaction, "transaction", id, auditSource, transactionChanges(input))
	a.println("Transaction updated successfully!")
	return nil
}

func (a *App) deleteTransaction(s *session.Session) error {
	a.println("\n=== Delete Transaction ===")
	id, ok, err := a.readTransactionID(s, "delete")
	if err != nil || !ok {
		return err
	}

	yes, err := a.confirm("Are you sure you want to delete this transaction? (y/n): ")
	if err != nil {
		return err
	}
	if !yes {
		a.println("Deletion cancelled.")
		return nil
	}

	if err := a.transactions.DeleteTransaction(s.UserID, id); err != nil {
		return err
	}
	a.audit.Log(s.UserID, services.AuditDeleteTransaction, "transaction", id, auditSource, nil)
	a.println("Transaction deleted successfully!")
	return nil
}

func transactionChanges(input *services.TransactionInput) map[string]interface{} {
	return map[string]interface{}{
		"type":     input.Type,
		"category": input.Category,
		"amount":   input.Amount,
		"date":     input.Date.String(),
	}
}

func (a *App) setBudget(s *session.Session) error {
	a.println("\n=== Set Budget ===")
	category, err := a.prompt("Enter category for the budget: ")
	if err != nil {
		return err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		a.println("Category cannot be empty.")
		return nil
	}

	text, err := a.prompt("Enter budget amount: ")
	if err != nil {
		return err
	}
	cents, err := money.Parse(text)
	switch {
	case errors.Is(err, money.ErrNotPositive):
		a.println("Budget amount must be positive.")
		return nil
	case err != nil:
		a.printf("Invalid amount: %v\n", err)
		return nil
	}

	budget, err := a.budgets.SetBudget(s.UserID, category, cents)
	if err != nil {
		return err
	}
	a.audit.Log(s.UserID, services.AuditSetBudget, "budget", budget.ID, auditSource,
		map[string]interface{}{"category": category, "amount": cents})
	a.printf("Budget set for %s: %s\n", category, money.Format(cents, a.currency))
	return nil
}

func (a *App) checkBudget(s *session.Session) error {
	a.println("\n=== Check Budget ===")
	check, err := a.budgets.CheckBudgets(s.UserID)
	if err != nil {
		return err
	}

	a.printf("Spending from %s to %s:\n", check.PeriodStart, check.AsOf)
	for _, st := range check.Statuses {
		spent, limit := money.Format(st.SpentAmount, a.currency), money.Format(st.BudgetAmount, a.currency)
		if st.Exceeded {
			a.printf("⚠️  Budget exceeded for %s: Spent %s, Budget %s\n", st.Category, spent, limit)
		} else {
			a.printf("✅ Within budget for %s: Spent %s, Budget %s (%.1f%% used)\n", st.Category, spent, limit, st.Percentage)
		}
	}
	if check.AllWithinLimits {
		a.println("All budgets are within limits.")
	}
	return nil
}

func (a *App) generateReport(s *session.Session) error {
	a.println("\n=== Financial Reports ===")
	var month, year int
	for {
		monthText, err := a.prompt("Enter month for report (MM): ")
		if err != nil {
			return err
		}
		yearText, err := a.prompt("Enter year for report (YYYY): ")
		if err != nil {
			return err
		}
		if month, year, err = services.ParseReportPeriod(monthText, yearText); err == nil {
			break
		}
		a.println("Invalid month/year format.")
	}

	report, err := a.reports.GenerateReport(s.UserID, month, year)
	if err != nil {
		return err
	}

	a.printf("\nMonthly Report (%04d-%02d):\n", report.Year, report.Month)
	a.printTotals(report.Monthly)
	a.printf("\nYearly Report (%04d):\n", report.Year)
	a.printTotals(report.Yearly)

	a.println("\nExpense Breakdown by Category:")
	if len(report.CategoryBreakdown) == 0 {
		a.println("No expenses recorded for this month.")
	}
	for _, row := range report.CategoryBreakdown {
		a.printf("%s: %s (%.1f%%)\n", row.Category, money.Format(row.Amount, a.currency), row.Percentage)
	}
	return nil
}

func (a *App) printTotals(t services.Totals) {
	a.printf("Total Income:  %s\n", money.Format(t.Income, a.currency))
	a.printf("Total Expense: %s\n", money.Format(t.Expense, a.currency))
	a.printf("Savings:       %s\n", money.Format(t.Savings, a.currency))
}

func (a *App) backup() error {
	snap, err := a.backups.Backup()
	if err != nil {
		return err
	}
	a.printf("Backup completed successfully: %s\n", snap.Name)
	return nil
}

// restore replaces the live data with a chosen snapshot. s is nil on the
// main menu. A logged-in user missing from the restored data is logged out.
func (a *App) restore(s *session.Session) error {
	snapshots, err := a.backups.List()
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		a.println("No backup files found.")
		return nil
	}

	a.println("\nAvailable backups:")
	for i, snap := range snapshots {
		a.printf("%d. %s\n", i+1, snap.Name)
	}

	choice, err := a.prompt("\nEnter backup number to restore (or 'cancel'): ")
	if err != nil {
		return err
	}
	choice = strings.TrimSpace(choice)
	if strings.EqualFold(choice, "cancel") {
		return nil
	}
	n, convErr := strconv.Atoi(choice)
	if convErr != nil || n < 1 || n > len(snapshots) {
		a.println("Invalid selection.")
		return nil
	}
	chosen := snapshots[n-1]

	yes, err := a.confirm("Are you sure you want to restore from " + chosen.Name + "? Current data will be overwritten (y/n): ")
	if err != nil {
		return err
	}
	if !yes {
		a.println("Restore cancelled.")
		return nil
	}

	restoreErr := a.backups.Restore(chosen.Name)
	// The handle may have been replaced even when the restore failed.
	a.wire()
	if restoreErr != nil {
		return restoreErr
	}
	a.println("Data restored successfully!")

	if s != nil {
		if _, err := a.users.GetUserByID(s.UserID); err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				a.println("Your account is not in the restored data. Logged out.")
				return errLoggedOut
			}
			return err
		}
	}
	return nil
}
