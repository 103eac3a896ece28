package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Equipment"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("rejected", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad json"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"precondition", PreconditionRequired("confirm first"), CodePreconditionRequired, http.StatusPreconditionRequired},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("MongoDB"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode())
		})
	}
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: Booking not found", NotFound("Booking").Error())

	wrapped := Wrap(errors.New("connection refused"), CodeInternal, "store write failed", http.StatusInternalServerError)
	assert.Equal(t, "INTERNAL_ERROR: store write failed (caused by: connection refused)", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original")
	appErr := Internal("wrapped", cause)

	assert.ErrorIs(t, appErr, cause)
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Equipment", "abc")

	assert.Equal(t, "Equipment not found", err.Message)
	assert.Equal(t, "abc", err.Details["id"])
	assert.Equal(t, "Equipment", err.Details["resource"])
}

func TestWithDetails(t *testing.T) {
	err := Validation("rejected", nil).WithDetails(map[string]any{"kind": "WeekendNotAllowed"})
	assert.Equal(t, "WeekendNotAllowed", err.Details["kind"])
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("Booking")

	assert.True(t, IsAppError(appErr))
	assert.True(t, IsAppError(fmt.Errorf("handler: %w", appErr)))
	assert.False(t, IsAppError(errors.New("plain")))
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("taken")
	assert.Same(t, appErr, AsAppError(fmt.Errorf("ctx: %w", appErr)))

	plain := errors.New("plain")
	got := AsAppError(plain)
	require.NotNil(t, got)
	assert.Equal(t, CodeInternal, got.Code)
	assert.ErrorIs(t, got, plain)
}

func TestAppError_Kind(t *testing.T) {
	assert.Equal(t, "DailyCapExceeded", Validation("rejected", map[string]any{"kind": "DailyCapExceeded"}).Kind())
	assert.Empty(t, NotFound("Booking").Kind())
	assert.Empty(t, NotFoundWithID("Booking", "b-1").Kind())
}

func TestStatusCode_FallsBackToCode(t *testing.T) {
	assert.Equal(t, http.StatusConflict, (&AppError{Code: CodeConflict}).StatusCode())
	assert.Equal(t, http.StatusTeapot, New(CodeConflict, "odd", http.StatusTeapot).StatusCode())
	assert.Equal(t, http.StatusInternalServerError, (&AppError{Code: "SOMETHING_ELSE"}).StatusCode())
}
