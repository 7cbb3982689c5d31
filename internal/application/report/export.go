package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/medstore/backend/internal/domain/report"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/infrastructure/sheet"
	"github.com/medstore/backend/internal/infrastructure/telemetry"
)

const (
	exportDateTimeLayout = "2006-01-02 15:04"
	notAvailable         = "N/A"
)

var openEnd = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

var (
	salesHeaders             = []string{"Invoice #", "Date", "Customer", "Total Amount", "Payment Method"}
	inventoryHeaders         = []string{"Medicine", "Batch Number", "Quantity", "Price", "Supplier"}
	detailedSalesHeaders     = []string{"Invoice #", "Date", "Customer", "Items", "Subtotal", "Discount", "Tax", "Total", "Payment Method"}
	detailedInventoryHeaders = []string{"ID", "Name", "Description", "Batch #", "Quantity", "Price", "Supplier", "Expiry Date"}
)

// ExportFile is a rendered-on-demand report download
type ExportFile struct {
	Filename  string
	Format    sheet.Format
	SheetName string
	Headers   []string
	Rows      [][]string
}

// ContentType returns the MIME type of the file
func (f *ExportFile) ContentType() string {
	return sheet.ContentType(f.Format)
}

// WriteTo renders the file into w
func (f *ExportFile) WriteTo(w io.Writer) error {
	return sheet.Write(w, f.Format, f.SheetName, f.Headers, f.Rows)
}

// Export builds a sales or inventory report
func (s *ReportService) Export(ctx context.Context, req ExportRequest) (*ExportFile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "export",
		telemetry.SpanAttrReportType, string(req.Type),
		telemetry.SpanAttrFormat, req.Format)
	defer span.End()

	file, err := s.buildExport(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRows, len(file.Rows))
	return file, nil
}

func (s *ReportService) buildExport(ctx context.Context, req ExportRequest) (*ExportFile, error) {
	format, err := sheet.ParseFormat(req.Format)
	if err != nil {
		return nil, shared.NewValidationError("Format must be csv or xlsx")
	}

	file := &ExportFile{Format: format}
	stamp := s.now().UTC().Format("20060102")

	switch req.Type {
	case ExportSales:
		r, err := exportRange(req.StartDate, req.EndDate)
		if err != nil {
			return nil, err
		}
		rows, err := s.repo.ListSalesForExport(ctx, r)
		if err != nil {
			return nil, err
		}
		file.SheetName = "Sales"
		file.Filename = fmt.Sprintf("sales_report_%s.%s", stamp, format)
		if req.Detailed {
			file.Headers, file.Rows = detailedSalesRows(rows)
		} else {
			file.Headers, file.Rows = salesRows(rows)
		}
	case ExportInventory:
		rows, err := s.repo.ListInventoryForExport(ctx)
		if err != nil {
			return nil, err
		}
		file.SheetName = "Inventory"
		file.Filename = fmt.Sprintf("inventory_report_%s.%s", stamp, format)
		if req.Detailed {
			file.Headers, file.Rows = detailedInventoryRows(rows)
		} else {
			file.Headers, file.Rows = inventoryRows(rows)
		}
	default:
		return nil, shared.NewValidationError("Invalid report type")
	}
	return file, nil
}

func exportRange(startDate, endDate string) (*report.DateRange, error) {
	start, err := shared.ParseOptionalDate("Start date", startDate)
	if err != nil {
		return nil, err
	}
	end, err := shared.ParseOptionalDate("End date", endDate)
	if err != nil {
		return nil, err
	}
	if start == nil && end == nil {
		return nil, nil
	}

	r := &report.DateRange{}
	if start != nil {
		r.Start = *start
	}
	if end != nil {
		r.End = end.AddDate(0, 0, 1)
	} else {
		r.End = openEnd
	}
	if !r.End.After(r.Start) {
		return nil, shared.NewValidationError("End date cannot be before start date")
	}
	return r, nil
}

func salesRows(rows []report.SaleExportRow) ([]string, [][]string) {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			r.InvoiceNumber,
			r.SaleDate.Format(exportDateTimeLayout),
			r.CustomerName,
			r.TotalAmount.StringFixed(2),
			r.PaymentMethod,
		}
	}
	return salesHeaders, out
}

func detailedSalesRows(rows []report.SaleExportRow) ([]string, [][]string) {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			r.InvoiceNumber,
			r.SaleDate.Format(exportDateTimeLayout),
			r.CustomerName,
			strconv.FormatInt(r.ItemCount, 10),
			r.Subtotal.StringFixed(2),
			r.Discount.StringFixed(2),
			r.TaxAmount.StringFixed(2),
			r.TotalAmount.StringFixed(2),
			r.PaymentMethod,
		}
	}
	return detailedSalesHeaders, out
}

func inventoryRows(rows []report.InventoryExportRow) ([]string, [][]string) {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			r.Name,
			orNA(r.BatchNumber),
			strconv.Itoa(r.Quantity),
			r.Price.StringFixed(2),
			orNA(r.SupplierName),
		}
	}
	return inventoryHeaders, out
}

func detailedInventoryRows(rows []report.InventoryExportRow) ([]string, [][]string) {
	out := make([][]string, len(rows))
	for i, r := range rows {
		expiry := notAvailable
		if !r.ExpiryDate.IsZero() {
			expiry = r.ExpiryDate.Format(shared.DateLayout)
		}
		out[i] = []string{
			strconv.FormatUint(r.MedicineID, 10),
			r.Name,
			r.Description,
			orNA(r.BatchNumber),
			strconv.Itoa(r.Quantity),
			r.Price.StringFixed(2),
			orNA(r.SupplierName),
			expiry,
		}
	}
	return detailedInventoryHeaders, out
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
