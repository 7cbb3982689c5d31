package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/interfaces/http/dto"
	"github.com/medstore/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set(middleware.RequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/")
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandler_ParseID(t *testing.T) {
	h := &BaseHandler{}
	for _, raw := range []string{"abc", "0", "-4", ""} {
		t.Run("rejects "+raw, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			c.Params = gin.Params{{Key: "id", Value: raw}}

			_, ok := h.parseID(c, "medicine")
			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeResponse(t, w)
			assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
			assert.Equal(t, "Invalid medicine ID", resp.Error.Message)
		})
	}

	c, _ := newTestContext(http.MethodGet, "/")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, ok := h.parseID(c, "medicine")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)
}

func TestBaseHandler_SuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext(http.MethodGet, "/")
	h.Success(c, map[string]string{"name": "Paracetamol"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)

	c, w = newTestContext(http.MethodGet, "/")
	h.SuccessWithMeta(c, []string{"a", "b"}, 45, 0, 0)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, dto.DefaultPageSize, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	c, w = newTestContext(http.MethodPost, "/")
	h.Created(c, gin.H{"id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext(http.MethodDelete, "/")
	h.NoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "not found",
			err:         shared.NewNotFoundError("Medicine", 9),
			wantStatus:  http.StatusNotFound,
			wantCode:    shared.CodeNotFound,
			wantMessage: "Medicine 9 not found",
		},
		{
			name:        "validation",
			err:         shared.NewValidationError("Quantity must be positive"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    shared.CodeValidation,
			wantMessage: "Quantity must be positive",
		},
		{
			name:        "field code",
			err:         shared.NewDomainError("INVALID_PRICE", "Price cannot be negative"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "INVALID_PRICE",
			wantMessage: "Price cannot be negative",
		},
		{
			name:        "conflict",
			err:         shared.NewConflictError("Invoice number already recorded"),
			wantStatus:  http.StatusConflict,
			wantCode:    shared.CodeConflict,
			wantMessage: "Invoice number already recorded",
		},
		{
			name:        "insufficient stock",
			err:         shared.NewInsufficientStockError("Amoxicillin"),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    shared.CodeInsufficientStock,
			wantMessage: "Not enough stock for Amoxicillin",
		},
		{
			name:        "invalid credentials",
			err:         shared.NewDomainError(shared.CodeInvalidCredential, "Invalid username or password"),
			wantStatus:  http.StatusUnauthorized,
			wantCode:    shared.CodeInvalidCredential,
			wantMessage: "Invalid username or password",
		},
		{
			name:        "wrapped domain error",
			err:         fmt.Errorf("record sale: %w", shared.NewInsufficientStockError("Ibuprofen")),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    shared.CodeInsufficientStock,
			wantMessage: "Not enough stock for Ibuprofen",
		},
		{
			name:        "transaction failure hides details",
			err:         shared.NewDomainError(shared.CodeTransactionFailed, "deadlock detected on medicines"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    shared.CodeTransactionFailed,
			wantMessage: "The operation could not be completed, please retry",
		},
		{
			name:        "plain error",
			err:         fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    dto.ErrCodeInternal,
			wantMessage: "An unexpected error occurred",
		},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			c.Set(middleware.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")
	h.HandleError(c, nil)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandler_Validate(t *testing.T) {
	type form struct {
		Name string `json:"name" binding:"required"`
	}
	h := &BaseHandler{}

	c, w := newTestContext(http.MethodPost, "/")
	assert.False(t, h.validate(c, &form{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)

	c, _ = newTestContext(http.MethodPost, "/")
	assert.True(t, h.validate(c, &form{Name: "Cetirizine"}))
}
