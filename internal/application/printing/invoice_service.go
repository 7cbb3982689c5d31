package printing

import (
	"context"
	"time"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
	infra "github.com/medstore/backend/internal/infrastructure/printing"
	"github.com/medstore/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Error codes returned when an optional backend is not configured or fails
const (
	CodePrintingUnavailable = "PRINTING_UNAVAILABLE"
	CodeStorageUnavailable  = "STORAGE_UNAVAILABLE"
	CodeRenderFailed        = "RENDER_FAILED"
)

// SaleLoader loads a sale with its lines and medicine names
type SaleLoader interface {
	LoadSale(ctx context.Context, id uint64) (*trade.Sale, error)
}

// ObjectStorage is the part of object storage invoice archiving needs
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// InvoiceService renders sale invoices and archives them as PDFs
type InvoiceService struct {
	sales    SaleLoader
	template *infra.InvoiceTemplate
	renderer infra.PDFRenderer
	storage  ObjectStorage
	store    infra.StoreInfo
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. A nil renderer disables PDF
// output and a nil storage disables archiving.
func NewInvoiceService(
	sales SaleLoader,
	template *infra.InvoiceTemplate,
	renderer infra.PDFRenderer,
	storage ObjectStorage,
	store infra.StoreInfo,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		sales:    sales,
		template: template,
		renderer: renderer,
		storage:  storage,
		store:    store,
		logger:   logger,
	}
}

// Render produces the invoice of a sale as HTML or PDF
func (s *InvoiceService) Render(ctx context.Context, saleID uint64, format Format) (*RenderedInvoice, error) {
	sale, err := s.sales.LoadSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	html, err := s.template.Render(s.invoiceData(sale))
	if err != nil {
		s.logger.Error("invoice template failed", zap.Uint64("sale_id", saleID), zap.Error(err))
		return nil, shared.NewDomainError(CodeRenderFailed, "Failed to render invoice")
	}

	if format != FormatPDF {
		return &RenderedInvoice{
			InvoiceNumber: sale.InvoiceNumber,
			Format:        FormatHTML,
			ContentType:   "text/html; charset=utf-8",
			Filename:      sale.InvoiceNumber + ".html",
			Content:       []byte(html),
		}, nil
	}

	pdf, err := s.renderPDF(ctx, sale.InvoiceNumber, html)
	if err != nil {
		return nil, err
	}
	return &RenderedInvoice{
		InvoiceNumber: sale.InvoiceNumber,
		Format:        FormatPDF,
		ContentType:   "application/pdf",
		Filename:      sale.InvoiceNumber + ".pdf",
		Content:       pdf,
	}, nil
}

// Archive stores the invoice PDF under invoices/{invoice_number}.pdf and
// returns a presigned download URL. An invoice already archived is not
// rendered again.
func (s *InvoiceService) Archive(ctx context.Context, saleID uint64) (*ArchivedInvoice, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError(CodeStorageUnavailable, "Invoice archiving is not configured")
	}

	sale, err := s.sales.LoadSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	key := StorageKey(sale.InvoiceNumber)

	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		s.logger.Error("invoice lookup failed", zap.String("key", key), zap.Error(err))
		return nil, shared.NewDomainError(CodeStorageUnavailable, "Invoice storage is unavailable")
	}

	if !exists {
		html, err := s.template.Render(s.invoiceData(sale))
		if err != nil {
			s.logger.Error("invoice template failed", zap.Uint64("sale_id", saleID), zap.Error(err))
			return nil, shared.NewDomainError(CodeRenderFailed, "Failed to render invoice")
		}
		pdf, err := s.renderPDF(ctx, sale.InvoiceNumber, html)
		if err != nil {
			return nil, err
		}
		if err := s.storage.Upload(ctx, key, pdf, "application/pdf"); err != nil {
			s.logger.Error("invoice upload failed", zap.String("key", key), zap.Error(err))
			return nil, shared.NewDomainError(CodeStorageUnavailable, "Invoice storage is unavailable")
		}
		s.logger.Info("invoice archived",
			zap.String("invoice_number", sale.InvoiceNumber),
			zap.String("key", key),
			zap.Int("bytes", len(pdf)))
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		s.logger.Error("presign failed", zap.String("key", key), zap.Error(err))
		return nil, shared.NewDomainError(CodeStorageUnavailable, "Invoice storage is unavailable")
	}

	return &ArchivedInvoice{
		InvoiceNumber: sale.InvoiceNumber,
		StorageKey:    key,
		DownloadURL:   url,
		ExpiresAt:     expiresAt,
	}, nil
}

// StorageKey is the object key of an archived invoice
func StorageKey(invoiceNumber string) string {
	return "invoices/" + invoiceNumber + ".pdf"
}

func (s *InvoiceService) renderPDF(ctx context.Context, invoiceNumber, html string) ([]byte, error) {
	if s.renderer == nil {
		return nil, shared.NewDomainError(CodePrintingUnavailable, "PDF rendering is not enabled")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "render_pdf",
		telemetry.SpanAttrInvoiceNumber, invoiceNumber)
	defer span.End()

	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:    html,
		Title:   "Invoice " + invoiceNumber,
		Margins: infra.DefaultMargins(),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("invoice PDF rendering failed",
			zap.String("invoice_number", invoiceNumber),
			zap.Error(err))
		return nil, shared.NewDomainError(CodeRenderFailed, "Failed to render invoice PDF")
	}
	telemetry.SetAttributes(span, "pdf_bytes", len(result.PDFData))
	return result.PDFData, nil
}

func (s *InvoiceService) invoiceData(sale *trade.Sale) *infra.InvoiceData {
	lines := make([]infra.InvoiceLine, len(sale.Items))
	for i, item := range sale.Items {
		lines[i] = infra.InvoiceLine{
			MedicineName: item.MedicineName,
			BatchNumber:  item.BatchNumber,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.TotalPrice,
		}
	}
	return &infra.InvoiceData{
		Store:           s.store,
		InvoiceNumber:   sale.InvoiceNumber,
		SaleDate:        sale.SaleDate,
		CustomerName:    sale.CustomerName,
		CustomerContact: sale.CustomerContact,
		PaymentMethod:   sale.PaymentMethod,
		Lines:           lines,
		Subtotal:        sale.Subtotal(),
		Discount:        sale.Discount,
		Tax:             sale.TaxAmount,
		Total:           sale.TotalAmount,
	}
}
