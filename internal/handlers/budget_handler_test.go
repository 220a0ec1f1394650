package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	setBudgetFn      func(userID uint, category string, amount int64) (*models.Budget, error)
	getUserBudgetsFn func(userID uint) ([]models.Budget, error)
	checkBudgetsFn   func(userID uint) (*services.BudgetCheck, error)
}

func (m *mockBudgetService) SetBudget(userID uint, category string, amount int64) (*models.Budget, error) {
	if m.setBudgetFn != nil {
		return m.setBudgetFn(userID, category, amount)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetUserBudgets(userID uint) ([]models.Budget, error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) CheckBudgets(userID uint) (*services.BudgetCheck, error) {
	if m.checkBudgetsFn != nil {
		return m.checkBudgetsFn(userID)
	}
	return &services.BudgetCheck{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.PUT("/budgets", handler.SetBudget)
	auth.GET("/budgets", handler.GetBudgets)
	auth.GET("/budgets/check", handler.CheckBudgets)
	return r
}

func TestBudgetHandler_SetBudget(t *testing.T) {
	t.Run("returns 200 with the stored budget", func(t *testing.T) {
		var gotCategory string
		var gotAmount int64
		svc := &mockBudgetService{
			setBudgetFn: func(_ uint, category string, amount int64) (*models.Budget, error) {
				gotCategory, gotAmount = category, amount
				return &models.Budget{
					Base:     models.Base{ID: 2},
					Amount:   amount,
					Category: models.Category{Name: category},
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupBudgetRouter(NewBudgetHandler(svc, audit))

		rec := doRequest(r, "PUT", "/budgets", `{"category":"Food","amount":50000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotCategory != "Food" || gotAmount != 50000 {
			t.Errorf("unexpected service args %q %d", gotCategory, gotAmount)
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["amount"] != float64(50000) {
			t.Errorf("expected amount 50000, got %v", budget["amount"])
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "SET_BUDGET" || audit.entries[0].resourceID != 2 {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})

	t.Run("returns 400 on non-positive amount", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/budgets", `{"category":"Food","amount":-1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on missing category", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/budgets", `{"amount":100}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetBudgets(t *testing.T) {
	svc := &mockBudgetService{
		getUserBudgetsFn: func(_ uint) ([]models.Budget, error) {
			return []models.Budget{
				{Amount: 100, Category: models.Category{Name: "Fun"}},
				{Amount: 200, Category: models.Category{Name: "Rent"}},
			}, nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/budgets", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	budgets := parseJSON(t, rec)["budgets"].([]interface{})
	if len(budgets) != 2 {
		t.Errorf("expected 2 budgets, got %d", len(budgets))
	}
}

func TestBudgetHandler_CheckBudgets(t *testing.T) {
	t.Run("returns statuses", func(t *testing.T) {
		svc := &mockBudgetService{
			checkBudgetsFn: func(_ uint) (*services.BudgetCheck, error) {
				return &services.BudgetCheck{
					PeriodStart: models.NewDate(2024, time.March, 1),
					AsOf:        models.NewDate(2024, time.March, 15),
					Statuses: []services.BudgetStatus{
						{Category: "Food", BudgetAmount: 10000, SpentAmount: 12000, Remaining: -2000, Percentage: 120, Exceeded: true},
					},
				}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/check", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["period_start"] != "2024-03-01" || result["as_of"] != "2024-03-15" {
			t.Errorf("unexpected period %v..%v", result["period_start"], result["as_of"])
		}
		status := result["statuses"].([]interface{})[0].(map[string]interface{})
		if status["exceeded"] != true || status["remaining"] != float64(-2000) {
			t.Errorf("unexpected status %v", status)
		}
	})

	t.Run("returns 404 without budgets", func(t *testing.T) {
		svc := &mockBudgetService{
			checkBudgetsFn: func(_ uint) (*services.BudgetCheck, error) {
				return nil, apperrors.ErrNoBudgets
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/check", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NO_BUDGETS")
	})
}
