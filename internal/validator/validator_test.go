package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Type string `validate:"required,transaction_kind"`
	Date string `validate:"required,iso_date"`
}

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := v.RegisterValidation("transaction_kind", validateTransactionKind); err != nil {
		t.Fatalf("register transaction_kind: %v", err)
	}
	if err := v.RegisterValidation("iso_date", validateISODate); err != nil {
		t.Fatalf("register iso_date: %v", err)
	}
	return v
}

func TestTransactionKind(t *testing.T) {
	v := newValidate(t)

	for _, kind := range []string{"Income", "expense", "EXPENSE"} {
		if err := v.Struct(sample{Type: kind, Date: "2024-01-05"}); err != nil {
			t.Errorf("expected %q to be accepted: %v", kind, err)
		}
	}
	if err := v.Struct(sample{Type: "transfer", Date: "2024-01-05"}); err == nil {
		t.Error("expected transfer to be rejected")
	}
}

func TestISODate(t *testing.T) {
	v := newValidate(t)

	if err := v.Struct(sample{Type: "Income", Date: "2024-02-29"}); err != nil {
		t.Errorf("expected leap day to be accepted: %v", err)
	}
	for _, date := range []string{"2023-02-29", "05/01/2024", "2024-1-5"} {
		if err := v.Struct(sample{Type: "Income", Date: date}); err == nil {
			t.Errorf("expected %q to be rejected", date)
		}
	}
}
