package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/infrastructure/sheet"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxImportErrors = 100

// medicineImportHeaders are the columns every import file must carry
var medicineImportHeaders = []string{"name", "price", "expiry_date"}

// ImportMedicines adds one medicine per row of a CSV or XLSX file.
// Rows are independent: a rejected row is reported and the rest are kept.
func (s *MedicineService) ImportMedicines(ctx context.Context, r io.Reader, format sheet.Format) (*ImportResult, error) {
	table, err := sheet.Read(r, format)
	if err != nil {
		return nil, shared.NewValidationError("Invalid import file: %v", err)
	}
	if missing := table.MissingHeaders(medicineImportHeaders); len(missing) > 0 {
		return nil, shared.NewValidationError("Import file is missing columns: %s", strings.Join(missing, ", "))
	}

	result := &ImportResult{TotalRows: len(table.Rows)}
	errs := sheet.NewErrorCollection(maxImportErrors)

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, ok := parseImportRow(row, errs)
		if !ok {
			result.ErrorRows++
			continue
		}

		if _, err := s.AddMedicine(ctx, req); err != nil {
			var domainErr *shared.DomainError
			if !errors.As(err, &domainErr) {
				return nil, fmt.Errorf("import row %d: %w", row.LineNumber, err)
			}
			errs.AddRejected(row.LineNumber, domainErr.Message)
			result.ErrorRows++
			continue
		}
		result.ImportedRows++
	}

	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()

	s.logger.Info("medicine import finished",
		zap.Int("total_rows", result.TotalRows),
		zap.Int("imported_rows", result.ImportedRows),
		zap.Int("error_rows", result.ErrorRows),
	)
	return result, nil
}

// parseImportRow converts a row into an AddMedicineRequest, recording field
// level problems in errs
func parseImportRow(row *sheet.Row, errs *sheet.ErrorCollection) (AddMedicineRequest, bool) {
	ok := true
	req := AddMedicineRequest{
		Name:        row.Get("name"),
		Description: row.Get("description"),
		BatchNumber: row.Get("batch_number"),
		ExpiryDate:  row.Get("expiry_date"),
	}

	if req.Name == "" {
		errs.AddRequiredError(row.LineNumber, "name")
		ok = false
	}
	if req.ExpiryDate == "" {
		errs.AddRequiredError(row.LineNumber, "expiry_date")
		ok = false
	}

	if raw := row.Get("price"); raw == "" {
		errs.AddRequiredError(row.LineNumber, "price")
		ok = false
	} else if price, err := decimal.NewFromString(raw); err != nil {
		errs.AddFormatError(row.LineNumber, "price", "decimal", raw)
		ok = false
	} else {
		req.Price = price
	}

	if raw := row.Get("quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 0 {
			errs.AddFormatError(row.LineNumber, "quantity", "non-negative integer", raw)
			ok = false
		} else {
			req.Quantity = qty
		}
	}

	if raw := row.Get("supplier_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			errs.AddFormatError(row.LineNumber, "supplier_id", "positive integer", raw)
			ok = false
		} else {
			req.SupplierID = &id
		}
	}

	return req, ok
}
