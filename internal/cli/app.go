// Package cli implements the interactive menu-driven terminal interface.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"fintrack/internal/backup"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

// auditSource tags audit entries written from the terminal.
const auditSource = "cli"

// errLoggedOut ends the dashboard loop and returns to the main menu.
var errLoggedOut = errors.New("logged out")

// Options configures an App.
type Options struct {
	In             io.Reader
	Out            io.Writer
	BackupDir      string
	CurrencySymbol string
	// ReadPassword reads a secret without echo. When nil, the terminal is
	// used if In is one, otherwise the next input line.
	ReadPassword func(prompt string) (string, error)
}

// App is one interactive terminal session over a store.
type App struct {
	store        backup.Store
	backups      *backup.Service
	in           io.Reader
	scanner      *bufio.Scanner
	out          io.Writer
	currency     string
	readPassword func(prompt string) (string, error)

	users        services.UserServicer
	transactions services.TransactionServicer
	budgets      services.BudgetServicer
	reports      services.ReportServicer
	audit        services.AuditServicer
}

// New creates an App backed by store.
func New(store backup.Store, opts Options) *App {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "₹"
	}

	a := &App{
		store:        store,
		backups:      backup.NewService(store, opts.BackupDir),
		in:           opts.In,
		scanner:      bufio.NewScanner(opts.In),
		out:          opts.Out,
		currency:     opts.CurrencySymbol,
		readPassword: opts.ReadPassword,
	}
	if a.readPassword == nil {
		a.readPassword = a.readSecret
	}
	a.wire()
	return a
}

// wire builds the services over the store's current handle. It runs again
// after a restore because the handle is replaced.
func (a *App) wire() {
	db := a.store.DB()
	categories := services.NewCategoryService(db)
	a.users = services.NewUserService(db)
	a.transactions = services.NewTransactionService(db, categories)
	a.budgets = services.NewBudgetService(db, categories)
	a.reports = services.NewReportService(db)
	a.audit = services.NewAuditService(db)
}

type menuItem struct {
	label   string
	failure string
	run     func() error
}

// Run shows the main menu until the user exits or input ends.
func (a *App) Run() error {
	for {
		var current *session.Session
		items := []menuItem{
			{label: "Register", failure: "Registration failed. Please try again.", run: a.register},
			{label: "Login", failure: "Login failed. Please try again.", run: func() error {
				s, err := a.login()
				current = s
				return err
			}},
			{label: "Backup Data", failure: "Failed to create backup. Please try again.", run: a.backup},
			{label: "Restore Data", failure: "Failed to restore data. Please try again.", run: func() error { return a.restore(nil) }},
			{label: "Exit"},
		}

		choice, err := a.menu("Personal Finance Management Application", items)
		if err != nil {
			return ignoreEOF(err)
		}
		if choice == len(items)-1 {
			a.println("Goodbye!")
			return nil
		}
		if err := a.runAction(items[choice]); err != nil {
			return ignoreEOF(err)
		}

		if current != nil {
			if err := a.dashboard(current); err != nil {
				return ignoreEOF(err)
			}
		}
	}
}

func (a *App) dashboard(s *session.Session) error {
	items := []menuItem{
		{label: "Add Transaction", failure: "Failed to add transaction. Please try again.", run: func() error { return a.addTransaction(s) }},
		{label: "View Transactions", failure: "Failed to retrieve transactions. Please try again.", run: func() error { return a.viewTransactions(s) }},
		{label: "Update Transaction", failure: "Failed to update transaction. Please try again.", run: func() error { return a.updateTransaction(s) }},
		{label: "Delete Transaction", failure: "Failed to delete transaction. Please try again.", run: func() error { return a.deleteTransaction(s) }},
		{label: "Set Budget", failure: "Failed to set budget. Please try again.", run: func() error { return a.setBudget(s) }},
		{label: "Check Budget", failure: "Failed to check budgets. Please try again.", run: func() error { return a.checkBudget(s) }},
		{label: "Generate Reports", failure: "Failed to generate reports. Please try again.", run: func() error { return a.generateReport(s) }},
		{label: "Backup Data", failure: "Failed to create backup. Please try again.", run: a.backup},
		{label: "Restore Data", failure: "Failed to restore data. Please try again.", run: func() error { return a.restore(s) }},
		{label: "Logout"},
	}

	for {
		choice, err := a.menu("Finance Dashboard", items)
		if err != nil {
			return err
		}
		if choice == len(items)-1 {
			logger.Get().Infow("user logged out", "user_id", s.UserID, "session_id", s.ID)
			a.println("Logged out successfully!")
			return nil
		}

		err = a.runAction(items[choice])
		if errors.Is(err, errLoggedOut) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// menu prints items and returns the index of the chosen one. Invalid
// choices are reported and asked again.
func (a *App) menu(title string, items []menuItem) (int, error) {
	for {
		a.printf("\n=== %s ===\n", title)
		for i, item := range items {
			a.printf("%d. %s\n", i+1, item.label)
		}

		choice, err := a.prompt(fmt.Sprintf("Select an option (1-%d): ", len(items)))
		if err != nil {
			return 0, err
		}
		for i := range items {
			if choice == fmt.Sprint(i+1) {
				return i, nil
			}
		}
		a.println("Invalid choice. Please try again.")
	}
}

// runAction runs one menu action. Failures are printed and the menu loop
// continues; only end of input and logout are returned.
func (a *App) runAction(item menuItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Errorw("menu action panicked", "action", item.label, "panic", r)
			a.println("An error occurred. Please try again.")
			err = nil
		}
	}()

	err = item.run()
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, errLoggedOut) {
		return err
	}
	a.reportError(err, item.failure)
	return nil
}

// reportError prints a one-line message for err. Storage failures are
// logged in full and shown as the generic failure text.
func (a *App) reportError(err error, failure string) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Internal != nil || appErr.Is(apperrors.ErrInternalServer) {
		fields := []interface{}{"error", err.Error()}
		if ok && appErr.Internal != nil {
			fields = append(fields, "internal", appErr.Internal.Error())
		}
		logger.Get().Errorw(failure, fields...)
		a.println(failure)
		return
	}
	a.println(appErr.Message)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.out, args...)
}

// prompt prints label and returns the next input line without its line ending.
func (a *App) prompt(label string) (string, error) {
	a.printf("%s", label)
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return "", err
		}
		a.println()
		return "", io.EOF
	}
	return strings.TrimRight(a.scanner.Text(), "\r"), nil
}

// confirm asks a yes/no question; only "y" or "Y" counts as yes.
func (a *App) confirm(label string) (bool, error) {
	answer, err := a.prompt(label)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}

func (a *App) readSecret(label string) (string, error) {
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		a.printf("%s", label)
		secret, err := term.ReadPassword(int(f.Fd()))
		a.println()
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}
	return a.prompt(label)
}
