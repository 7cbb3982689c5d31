package trade

import (
	"context"
	"errors"
	"strings"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// SaleLedger records medicines sold at the counter
type SaleLedger struct {
	txScope  TransactionScope
	saleRepo trade.SaleRepository
	metrics  LedgerMetrics
	logger   *zap.Logger
}

// NewSaleLedger creates a new SaleLedger
func NewSaleLedger(txScope TransactionScope, saleRepo trade.SaleRepository) *SaleLedger {
	return &SaleLedger{
		txScope:  txScope,
		saleRepo: saleRepo,
		metrics:  noopLedgerMetrics{},
		logger:   zap.NewNop(),
	}
}

// SetMetrics sets the recorder notified after each committed sale
func (l *SaleLedger) SetMetrics(m LedgerMetrics) {
	if m != nil {
		l.metrics = m
	}
}

// SetLogger sets the logger
func (l *SaleLedger) SetLogger(logger *zap.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// RecordSale decrements stock for every line, prices the sale and stores it under
// the next invoice number of the day. Nothing is written when any line is short.
func (l *SaleLedger) RecordSale(ctx context.Context, req RecordSaleRequest) (*SaleResponse, error) {
	lines := make([]SaleItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			continue
		}
		if item.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		lines = append(lines, item)
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("Sale must contain at least one item with a positive quantity")
	}
	if err := trade.ValidatePercents(req.DiscountPercent, req.TaxPercent); err != nil {
		return nil, err
	}

	sale, err := trade.NewSale(req.CustomerName, req.CustomerContact, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	err = l.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, line := range lines {
			medicine, err := repos.MedicineRepo().FindByID(ctx, line.MedicineID)
			if err != nil {
				return err
			}
			ok, err := repos.StockRepo().DecreaseIfAvailable(ctx, medicine.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				l.metrics.StockShortage(ctx, medicine.ID)
				return shared.NewInsufficientStockError(medicine.Name)
			}

			price := line.UnitPrice
			if price.IsZero() {
				price = medicine.Price
			}
			if err := sale.AddItem(medicine.ID, medicine.BatchNumber, line.Quantity, price); err != nil {
				return err
			}
			sale.Items[len(sale.Items)-1].MedicineName = medicine.Name
		}

		if _, err := sale.ApplyPricing(req.DiscountPercent, req.TaxPercent); err != nil {
			return err
		}

		seq, err := repos.InvoiceSequenceRepo().Next(ctx, trade.SaleInvoicePrefix(sale.SaleDate))
		if err != nil {
			return err
		}
		if err := sale.AssignInvoiceNumber(trade.FormatSaleInvoiceNumber(sale.SaleDate, seq)); err != nil {
			return err
		}

		return repos.SaleRepo().Create(ctx, sale)
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		l.logger.Error("sale transaction failed",
			zap.String("customer_name", sale.CustomerName),
			zap.Int("items", len(lines)),
			zap.Error(err),
		)
		return nil, shared.ErrTransactionFailed
	}

	units := 0
	for _, item := range sale.Items {
		units += item.Quantity
	}
	l.metrics.SaleRecorded(ctx, sale.PaymentMethod, sale.TotalAmount, units)
	l.logger.Info("sale recorded",
		zap.Uint64("sale_id", sale.ID),
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.Int("items", sale.ItemCount()),
		zap.String("total_amount", sale.TotalAmount.StringFixed(2)),
	)

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetSale retrieves a sale with its items and medicine names
func (l *SaleLedger) GetSale(ctx context.Context, id uint64) (*SaleResponse, error) {
	sale, err := l.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// ListSales lists sales newest first. The end date covers the whole day.
func (l *SaleLedger) ListSales(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	start, err := shared.ParseOptionalDate("Start date", filter.StartDate)
	if err != nil {
		return nil, 0, err
	}
	end, err := shared.ParseOptionalDate("End date", filter.EndDate)
	if err != nil {
		return nil, 0, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, 0, shared.NewValidationError("End date cannot be before start date")
	}

	domainFilter := trade.SaleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "sale_date",
			OrderDir: "desc",
		},
		StartDate: start,
		EndDate:   end,
		Customer:  strings.TrimSpace(filter.Customer),
	}
	domainFilter.Normalize()

	sales, err := l.saleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := l.saleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSaleResponses(sales), total, nil
}

// LoadSale returns the domain sale for renderers that need more than the response view
func (l *SaleLedger) LoadSale(ctx context.Context, id uint64) (*trade.Sale, error) {
	return l.saleRepo.FindByID(ctx, id)
}
