package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// PurchaseLedger records stock received from suppliers. Every purchase raises
// the quantity of its medicines in the same transaction that stores it.
type PurchaseLedger struct {
	txScope      TransactionScope
	purchaseRepo trade.PurchaseRepository
	metrics      LedgerMetrics
	logger       *zap.Logger
}

// NewPurchaseLedger creates a new PurchaseLedger
func NewPurchaseLedger(txScope TransactionScope, purchaseRepo trade.PurchaseRepository) *PurchaseLedger {
	return &PurchaseLedger{
		txScope:      txScope,
		purchaseRepo: purchaseRepo,
		metrics:      noopLedgerMetrics{},
		logger:       zap.NewNop(),
	}
}

// SetMetrics sets the recorder notified after each committed purchase
func (l *PurchaseLedger) SetMetrics(m LedgerMetrics) {
	if m != nil {
		l.metrics = m
	}
}

// SetLogger sets the logger
func (l *PurchaseLedger) SetLogger(logger *zap.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// RecordPurchase validates the request and stores the purchase with its stock increases
func (l *PurchaseLedger) RecordPurchase(ctx context.Context, req RecordPurchaseRequest) (*PurchaseResponse, error) {
	purchase, err := BuildPurchase(req)
	if err != nil {
		return nil, err
	}

	err = l.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return l.RecordPurchaseTx(ctx, repos, purchase)
	})
	if err != nil {
		return nil, l.translate(err, purchase.InvoiceNumber)
	}

	l.PurchaseCommitted(ctx, purchase)

	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// PurchaseCommitted records metrics and the audit log line for a purchase
// whose transaction has committed. Callers of RecordPurchaseTx invoke it
// after their own commit.
func (l *PurchaseLedger) PurchaseCommitted(ctx context.Context, purchase *trade.Purchase) {
	l.metrics.PurchaseRecorded(ctx, purchase.TotalAmount, purchase.TotalQuantity())
	l.logger.Info("purchase recorded",
		zap.Uint64("purchase_id", purchase.ID),
		zap.String("invoice_number", purchase.InvoiceNumber),
		zap.Uint64("supplier_id", purchase.SupplierID),
		zap.Int("items", len(purchase.Items)),
		zap.String("total_amount", purchase.TotalAmount.StringFixed(2)),
	)
}

// RecordPurchaseTx stores an already built purchase using repositories bound to
// the caller's transaction. The caller owns commit and rollback, then calls
// PurchaseCommitted.
func (l *PurchaseLedger) RecordPurchaseTx(ctx context.Context, repos TransactionalRepositories, purchase *trade.Purchase) error {
	if err := purchase.Validate(); err != nil {
		return err
	}

	supplier, err := repos.SupplierRepo().FindByID(ctx, purchase.SupplierID)
	if err != nil {
		return err
	}
	purchase.SupplierName = supplier.Name

	exists, err := repos.PurchaseRepo().ExistsByInvoiceNumber(ctx, purchase.InvoiceNumber)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewConflictError(fmt.Sprintf("Invoice number %s already exists", purchase.InvoiceNumber))
	}

	for i := range purchase.Items {
		item := &purchase.Items[i]
		medicine, err := repos.MedicineRepo().FindByID(ctx, item.MedicineID)
		if err != nil {
			return err
		}
		item.MedicineName = medicine.Name
	}

	if err := repos.PurchaseRepo().Create(ctx, purchase); err != nil {
		return err
	}

	for _, item := range purchase.Items {
		if err := repos.StockRepo().Increase(ctx, item.MedicineID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// GetPurchase retrieves a purchase with its items
func (l *PurchaseLedger) GetPurchase(ctx context.Context, id uint64) (*PurchaseResponse, error) {
	purchase, err := l.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// ListPurchases lists purchases newest first
func (l *PurchaseLedger) ListPurchases(ctx context.Context, filter PurchaseListFilter) ([]PurchaseResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "purchase_date",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
	domainFilter.Normalize()
	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}

	purchases, err := l.purchaseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := l.purchaseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPurchaseResponses(purchases), total, nil
}

// BuildPurchase converts a request into a purchase entity, validating every line
func BuildPurchase(req RecordPurchaseRequest) (*trade.Purchase, error) {
	status, err := trade.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		return nil, err
	}
	purchase, err := trade.NewPurchase(req.SupplierID, req.InvoiceNumber, status)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		expiry, err := shared.ParseOptionalDate("Expiry date", item.ExpiryDate)
		if err != nil {
			return nil, err
		}
		if err := purchase.AddItem(item.MedicineID, item.BatchNumber, item.Quantity, item.UnitPrice, expiry); err != nil {
			return nil, err
		}
	}
	if err := purchase.Validate(); err != nil {
		return nil, err
	}
	return purchase, nil
}

// translate keeps domain errors and hides persistence failures behind TRANSACTION_FAILED
func (l *PurchaseLedger) translate(err error, invoiceNumber string) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	l.logger.Error("purchase transaction failed",
		zap.String("invoice_number", invoiceNumber),
		zap.Error(err),
	)
	return shared.ErrTransactionFailed
}
