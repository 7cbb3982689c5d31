package report

import (
	"context"

	"github.com/medstore/backend/internal/domain/report"
	"github.com/stretchr/testify/mock"
)

// MockReportRepository is a mock implementation of report.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) GetDashboardSummary(ctx context.Context, lowStockThreshold int) (*report.DashboardSummary, error) {
	args := m.Called(ctx, lowStockThreshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DashboardSummary), args.Error(1)
}

func (m *MockReportRepository) GetDailySales(ctx context.Context, r report.DateRange) ([]report.DailySales, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.DailySales), args.Error(1)
}

func (m *MockReportRepository) GetTopMedicines(ctx context.Context, r report.DateRange, n int) ([]report.MedicineSalesRanking, error) {
	args := m.Called(ctx, r, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.MedicineSalesRanking), args.Error(1)
}

func (m *MockReportRepository) GetLowStock(ctx context.Context, threshold int) ([]report.LowStockItem, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.LowStockItem), args.Error(1)
}

func (m *MockReportRepository) GetPaymentMethodBreakdown(ctx context.Context, r report.DateRange) ([]report.PaymentMethodBreakdown, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PaymentMethodBreakdown), args.Error(1)
}

func (m *MockReportRepository) ListSalesForExport(ctx context.Context, r *report.DateRange) ([]report.SaleExportRow, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.SaleExportRow), args.Error(1)
}

func (m *MockReportRepository) ListInventoryForExport(ctx context.Context) ([]report.InventoryExportRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.InventoryExportRow), args.Error(1)
}
