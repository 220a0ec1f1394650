package testutil

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	apperrors "fintrack/internal/errors"
)

func asAppError(t *testing.T, err error, want string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s, got nil", want)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr
}

// AssertAppError checks that err is an *AppError carrying expectedCode.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	appErr := asAppError(t, err, "AppError with code "+expectedCode)
	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertAppErrorStatus checks the HTTP status an *AppError maps to.
func AssertAppErrorStatus(t *testing.T, err error, expectedStatus int) {
	t.Helper()

	appErr := asAppError(t, err, "AppError")
	if appErr.StatusCode != expectedStatus {
		t.Errorf("expected status %d for %s, got %d", expectedStatus, appErr.Code, appErr.StatusCode)
	}
}

// AssertErrorResponse checks a recorded response against the JSON error
// envelope: the status line and error.code both have to match.
func AssertErrorResponse(t *testing.T, rec *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	t.Helper()

	if rec.Code != expectedStatus {
		t.Errorf("expected status %d, got %d (body: %s)", expectedStatus, rec.Code, rec.Body.String())
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON error envelope: %v (body: %s)", err, rec.Body.String())
	}
	if body.Error.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, body.Error.Code, body.Error.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
