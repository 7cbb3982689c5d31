package trade

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

// MockSaleRepository is a mock implementation of trade.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uint64) (*trade.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAll(ctx context.Context, filter trade.SaleFilter) ([]trade.Sale, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) Count(ctx context.Context, filter trade.SaleFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

// MockInvoiceSequenceRepository is a mock implementation of trade.InvoiceSequenceRepository
type MockInvoiceSequenceRepository struct {
	mock.Mock
}

func (m *MockInvoiceSequenceRepository) Next(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

// spyMetrics records ledger notifications
type spyMetrics struct {
	sales     int
	purchases int
	shortages []uint64
	lastTotal decimal.Decimal
	lastUnits int
}

func (s *spyMetrics) SaleRecorded(_ context.Context, _ string, total decimal.Decimal, units int) {
	s.sales++
	s.lastTotal = total
	s.lastUnits = units
}

func (s *spyMetrics) PurchaseRecorded(_ context.Context, total decimal.Decimal, units int) {
	s.purchases++
	s.lastTotal = total
	s.lastUnits = units
}

func (s *spyMetrics) StockShortage(_ context.Context, medicineID uint64) {
	s.shortages = append(s.shortages, medicineID)
}

type ledgerMocks struct {
	medicines *MockMedicineRepository
	stock     *MockStockRepository
	suppliers *MockSupplierRepository
	purchases *MockPurchaseRepository
	sales     *MockSaleRepository
	sequences *MockInvoiceSequenceRepository
	scope     *NoOpTransactionScope
}

func newLedgerMocks() *ledgerMocks {
	m := &ledgerMocks{
		medicines: new(MockMedicineRepository),
		stock:     new(MockStockRepository),
		suppliers: new(MockSupplierRepository),
		purchases: new(MockPurchaseRepository),
		sales:     new(MockSaleRepository),
		sequences: new(MockInvoiceSequenceRepository),
	}
	m.scope = NewNoOpTransactionScope(m.medicines, m.stock, m.suppliers, m.purchases, m.sales, m.sequences)
	return m
}

func testMedicine(id uint64, name string, qty int, price string) *catalog.Medicine {
	m := &catalog.Medicine{
		Name:        name,
		Quantity:    qty,
		Price:       decimal.RequireFromString(price),
		BatchNumber: "B-" + name,
	}
	m.ID = id
	return m
}

func testSupplier(id uint64, name string) *partner.Supplier {
	s := &partner.Supplier{Name: name, Contact: "Desk"}
	s.ID = id
	return s
}
