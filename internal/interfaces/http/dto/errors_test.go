package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeTransactionFailed, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeDuplicateRequest, http.StatusConflict},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodePrintingUnavailable, http.StatusServiceUnavailable},
		{ErrCodeStorageUnavailable, http.StatusServiceUnavailable},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		// Field-level and token codes are matched by prefix
		{"INVALID_QUANTITY", http.StatusBadRequest},
		{"INVALID_CUSTOMER_NAME", http.StatusBadRequest},
		{"TOKEN_SOMETHING_NEW", http.StatusUnauthorized},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Medicine not found", PublicMessage(ErrCodeNotFound, "Medicine not found"))
	assert.NotContains(t, PublicMessage(ErrCodeTransactionFailed, "deadlock detected on medicines"), "deadlock")
	assert.Equal(t, "An unexpected error occurred", PublicMessage(ErrCodeInternal, "pq: connection refused"))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		page          int
		pageSize      int
		wantPageSize  int
		wantTotalPage int
	}{
		{"exact pages", 40, 1, 20, 20, 2},
		{"partial last page", 41, 3, 20, 20, 3},
		{"empty", 0, 1, 20, 20, 0},
		{"zero page size uses default", 45, 1, 0, DefaultPageSize, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]int{}, tt.total, tt.page, tt.pageSize)
			require.NotNil(t, resp.Meta)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantPageSize, resp.Meta.PageSize)
			assert.Equal(t, tt.wantTotalPage, resp.Meta.TotalPages)
			assert.Equal(t, tt.total, resp.Meta.Total)
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	before := time.Now().UTC()
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Sale with id '9' not found", "req-123")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.False(t, resp.Error.Timestamp.Before(before))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")
	errObj := decoded["error"].(map[string]any)
	assert.Equal(t, "req-123", errObj["request_id"])
	assert.NotContains(t, errObj, "details")
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "name", Message: "name is required", Code: "required"},
		{Field: "expiry_date", Message: "expiry_date is required", Code: "required"},
	}
	resp := NewValidationErrorResponse("Request validation failed", "req-1", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "expiry_date", resp.Error.Details[1].Field)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	resp := NewErrorResponseWithHelp(ErrCodeUnauthorized, "Missing token", "req-2", "Send Authorization: Bearer <token>")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Send Authorization: Bearer <token>", resp.Error.Help)
	assert.Equal(t, "req-2", resp.Error.RequestID)
}
