package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Code:    "TEST_ERROR",
				Message: "Test error message",
			},
			expected: "TEST_ERROR: Test error message",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Code:    "TEST_ERROR",
				Message: "Test error message",
				Cause:   fmt.Errorf("underlying error"),
			},
			expected: "TEST_ERROR: Test error message (caused by: underlying error)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestAppError_GetHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected int
	}{
		{
			name:     "validation error",
			appError: &AppError{Type: ErrTypeValidation},
			expected: http.StatusBadRequest,
		},
		{
			name:     "not found error",
			appError: &AppError{Type: ErrTypeNotFound},
			expected: http.StatusNotFound,
		},
		{
			name:     "timeout error",
			appError: &AppError{Type: ErrTypeTimeout},
			expected: http.StatusRequestTimeout,
		},
		{
			name:     "database error",
			appError: &AppError{Type: ErrTypeDatabase},
			expected: http.StatusBadGateway,
		},
		{
			name:     "internal error",
			appError: &AppError{Type: ErrTypeInternal},
			expected: http.StatusInternalServerError,
		},
		{
			name:     "explicit status wins",
			appError: &AppError{Type: ErrTypeDatabase, StatusCode: http.StatusServiceUnavailable},
			expected: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.GetHTTPStatusCode())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	appErr := NewDatabaseError(ErrCodeDatabaseQuery, "query failed", cause)
	assert.Equal(t, cause, appErr.Unwrap())
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		errType   ErrorType
		retryable bool
	}{
		{"validation", NewValidationError(ErrCodeInvalidInput, "bad input", nil), ErrTypeValidation, false},
		{"database", NewDatabaseError(ErrCodeDatabaseConnection, "connect failed", nil), ErrTypeDatabase, true},
		{"internal", NewInternalError(ErrCodeProcessingError, "boom", nil), ErrTypeInternal, false},
		{"timeout", NewTimeoutError("TIMEOUT", "too slow", nil), ErrTypeTimeout, true},
		{"not found", NewNotFoundError(ErrCodeReportNotFound, "missing", nil), ErrTypeNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.retryable, tt.err.IsRetryable())
		})
	}
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(NewInternalError("X", "y", nil)))
	assert.False(t, IsAppError(fmt.Errorf("plain error")))
}

func TestAsAppError(t *testing.T) {
	appErr := NewValidationError(ErrCodeInvalidInput, "bad", nil)

	got, ok := AsAppError(appErr)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidInput, got.Code)

	_, ok = AsAppError(fmt.Errorf("plain error"))
	assert.False(t, ok)
}

func TestWrapError(t *testing.T) {
	t.Run("wraps with retryability by type", func(t *testing.T) {
		wrapped := WrapError(fmt.Errorf("conn reset"), ErrTypeDatabase, ErrCodeDatabaseQuery, "query failed")
		require.NotNil(t, wrapped)
		assert.True(t, wrapped.IsRetryable())
		assert.Equal(t, "conn reset", wrapped.Cause.Error())
	})

	t.Run("non-transient types are not retryable", func(t *testing.T) {
		wrapped := WrapError(fmt.Errorf("bad"), ErrTypeValidation, ErrCodeInvalidInput, "invalid")
		assert.False(t, wrapped.IsRetryable())
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, WrapError(nil, ErrTypeInternal, "X", "y"))
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewDatabaseError(ErrCodeDatabaseQuery, "x", nil)))
	assert.False(t, IsRetryable(NewValidationError(ErrCodeInvalidInput, "x", nil)))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
}
