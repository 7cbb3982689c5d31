package catalog

import (
	"context"

	"github.com/medstore/backend/internal/domain/catalog"
	"github.com/medstore/backend/internal/domain/partner"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockMedicineRepository is a mock implementation of catalog.MedicineRepository
type MockMedicineRepository struct {
	mock.Mock
}

func (m *MockMedicineRepository) FindByID(ctx context.Context, id uint64) (*catalog.Medicine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Medicine, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMedicineRepository) FindBySupplier(ctx context.Context, supplierID uint64) ([]catalog.Medicine, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) CountBySupplier(ctx context.Context, supplierID uint64) (int64, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMedicineRepository) HasLedgerHistory(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockMedicineRepository) Save(ctx context.Context, medicine *catalog.Medicine) error {
	args := m.Called(ctx, medicine)
	return args.Error(0)
}

func (m *MockMedicineRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStockRepository is a mock implementation of catalog.StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) Increase(ctx context.Context, id uint64, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockStockRepository) DecreaseIfAvailable(ctx context.Context, id uint64, qty int) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

// MockSupplierRepository is a mock implementation of partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uint64) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPurchaseRepository is a mock implementation of trade.PurchaseRepository
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) FindByID(ctx context.Context, id uint64) (*trade.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Purchase, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseRepository) FindRecentBySupplier(ctx context.Context, supplierID uint64, limit int) ([]trade.Purchase, error) {
	args := m.Called(ctx, supplierID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) CountBySupplier(ctx context.Context, supplierID uint64) (int64, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseRepository) Create(ctx context.Context, purchase *trade.Purchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

// purchaseSpy counts purchase notifications from the ledger
type purchaseSpy struct {
	purchases int
	units     int
	total     decimal.Decimal
}

func (s *purchaseSpy) SaleRecorded(context.Context, string, decimal.Decimal, int) {}

func (s *purchaseSpy) PurchaseRecorded(_ context.Context, total decimal.Decimal, units int) {
	s.purchases++
	s.units = units
	s.total = total
}

func (s *purchaseSpy) StockShortage(context.Context, uint64) {}
