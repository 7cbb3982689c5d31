package trade

import (
	"context"

	"github.com/medstore/backend/internal/domain/catalog"
	"github.com/medstore/backend/internal/domain/partner"
	"github.com/medstore/backend/internal/domain/trade"
)

// TransactionScope is the unit of work for ledger operations.
// Every repository handed to fn shares one database transaction, which is
// committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories a ledger operation may touch.
// All of them are bound to the same transaction.
type TransactionalRepositories interface {
	// MedicineRepo returns the medicine repository scoped to the current transaction
	MedicineRepo() catalog.MedicineRepository
	// StockRepo returns the quantity mutator scoped to the current transaction
	StockRepo() catalog.StockRepository
	// SupplierRepo returns the supplier repository scoped to the current transaction
	SupplierRepo() partner.SupplierRepository
	// PurchaseRepo returns the purchase repository scoped to the current transaction
	PurchaseRepo() trade.PurchaseRepository
	// SaleRepo returns the sale repository scoped to the current transaction
	SaleRepo() trade.SaleRepository
	// InvoiceSequenceRepo returns the invoice counter scoped to the current transaction
	InvoiceSequenceRepo() trade.InvoiceSequenceRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing with in-memory or mocked repositories.
type NoOpTransactionScope struct {
	medicineRepo catalog.MedicineRepository
	stockRepo    catalog.StockRepository
	supplierRepo partner.SupplierRepository
	purchaseRepo trade.PurchaseRepository
	saleRepo     trade.SaleRepository
	sequenceRepo trade.InvoiceSequenceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	medicineRepo catalog.MedicineRepository,
	stockRepo catalog.StockRepository,
	supplierRepo partner.SupplierRepository,
	purchaseRepo trade.PurchaseRepository,
	saleRepo trade.SaleRepository,
	sequenceRepo trade.InvoiceSequenceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		medicineRepo: medicineRepo,
		stockRepo:    stockRepo,
		supplierRepo: supplierRepo,
		purchaseRepo: purchaseRepo,
		saleRepo:     saleRepo,
		sequenceRepo: sequenceRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MedicineRepo returns the medicine repository.
func (s *NoOpTransactionScope) MedicineRepo() catalog.MedicineRepository { return s.medicineRepo }

// StockRepo returns the stock repository.
func (s *NoOpTransactionScope) StockRepo() catalog.StockRepository { return s.stockRepo }

// SupplierRepo returns the supplier repository.
func (s *NoOpTransactionScope) SupplierRepo() partner.SupplierRepository { return s.supplierRepo }

// PurchaseRepo returns the purchase repository.
func (s *NoOpTransactionScope) PurchaseRepo() trade.PurchaseRepository { return s.purchaseRepo }

// SaleRepo returns the sale repository.
func (s *NoOpTransactionScope) SaleRepo() trade.SaleRepository { return s.saleRepo }

// InvoiceSequenceRepo returns the invoice sequence repository.
func (s *NoOpTransactionScope) InvoiceSequenceRepo() trade.InvoiceSequenceRepository {
	return s.sequenceRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
