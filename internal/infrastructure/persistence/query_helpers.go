package persistence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/medstore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// likePattern lowercases and wraps a search term for a LOWER(col) LIKE ? match.
// LIKE wildcards in the term are escaped.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// searchID returns the term as an id when it is a plain positive integer
func searchID(search string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(search), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// orderClause builds a whitelisted "table.column DIR" clause
func orderClause(table string, filter shared.Filter, allowed map[string]bool, defaultField, defaultDir string) string {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := defaultDir
	if filter.OrderDir != "" {
		dir = ValidateSortOrder(filter.OrderDir)
	}
	return fmt.Sprintf("%s.%s %s", table, field, dir)
}

// paginate applies the filter's page window
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	filter.Normalize()
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

// notFound maps gorm.ErrRecordNotFound to a NOT_FOUND domain error
func notFound(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource, id)
	}
	return err
}

// writeError maps constraint violations to domain errors
func writeError(err error, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewConflictError(conflictMsg)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewConflictError("Record is referenced by other records")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return shared.NewValidationError("Value violates a database constraint")
	default:
		return err
	}
}
