package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// isJSON reports whether the request body is JSON rather than a form post
func isJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json")
}

// parseDecimal reads an optional money or percent value. Blank is zero.
func parseDecimal(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, shared.NewDomainError(shared.CodeInvalidInput, field+" must be a number")
	}
	return d, nil
}

// parseInt reads an optional integer. Blank is zero.
func parseInt(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, shared.NewDomainError(shared.CodeInvalidInput, field+" must be a whole number")
	}
	return n, nil
}

// parseOptionalID reads an optional foreign key. Blank and "0" mean none.
func parseOptionalID(field, raw string) (*uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid "+field)
	}
	return &id, nil
}
