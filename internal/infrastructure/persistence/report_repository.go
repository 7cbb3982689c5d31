package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/medstore/backend/internal/domain/report"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements ReportRepository using GORM.
// The SQL sticks to what both PostgreSQL and SQLite accept.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// GetDashboardSummary counts medicines, sums all sales and counts low stock medicines
func (r *GormReportRepository) GetDashboardSummary(ctx context.Context, lowStockThreshold int) (*report.DashboardSummary, error) {
	type medicineCounts struct {
		TotalMedicines    int64
		LowStockMedicines int64
	}
	var counts medicineCounts
	if err := r.db.WithContext(ctx).Table("medicines").
		Select(`
			COUNT(*) as total_medicines,
			COALESCE(SUM(CASE WHEN quantity < ? THEN 1 ELSE 0 END), 0) as low_stock_medicines
		`, lowStockThreshold).
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	var sales struct {
		TotalAmount decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Table("sales").
		Select("COALESCE(SUM(total_amount), 0) as total_amount").
		Scan(&sales).Error; err != nil {
		return nil, err
	}

	return &report.DashboardSummary{
		TotalMedicines:    counts.TotalMedicines,
		TotalSalesAmount:  sales.TotalAmount,
		LowStockMedicines: counts.LowStockMedicines,
		LowStockThreshold: lowStockThreshold,
	}, nil
}

// GetDailySales returns one row per day that has sales within the range
func (r *GormReportRepository) GetDailySales(ctx context.Context, rng report.DateRange) ([]report.DailySales, error) {
	type dailyResult struct {
		Day        string
		SaleCount  int64
		TotalSales decimal.Decimal
	}

	var results []dailyResult
	err := r.db.WithContext(ctx).Table("sales").
		Select(`
			DATE(sale_date) as day,
			COUNT(*) as sale_count,
			COALESCE(SUM(total_amount), 0) as total_sales
		`).
		Where("sale_date >= ? AND sale_date < ?", rng.Start, rng.End).
		Group("DATE(sale_date)").
		Order("day ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	days := make([]report.DailySales, 0, len(results))
	for _, res := range results {
		day, err := parseDay(res.Day)
		if err != nil {
			return nil, err
		}
		days = append(days, report.DailySales{
			Date:       day,
			SaleCount:  res.SaleCount,
			TotalSales: res.TotalSales,
		})
	}
	return days, nil
}

// GetTopMedicines returns the top n medicines by quantity sold within the range
func (r *GormReportRepository) GetTopMedicines(ctx context.Context, rng report.DateRange, n int) ([]report.MedicineSalesRanking, error) {
	if n <= 0 {
		return []report.MedicineSalesRanking{}, nil
	}

	var rankings []report.MedicineSalesRanking
	err := r.db.WithContext(ctx).Table("sale_items si").
		Select(`
			si.medicine_id as medicine_id,
			COALESCE(m.name, '') as medicine_name,
			SUM(si.quantity) as total_quantity,
			COALESCE(SUM(si.total_price), 0) as total_sales
		`).
		Joins("JOIN sales s ON s.id = si.sale_id").
		Joins("LEFT JOIN medicines m ON m.id = si.medicine_id").
		Where("s.sale_date >= ? AND s.sale_date < ?", rng.Start, rng.End).
		Group("si.medicine_id, m.name").
		Order("total_quantity DESC").
		Order("si.medicine_id ASC").
		Limit(n).
		Scan(&rankings).Error
	if err != nil {
		return nil, err
	}

	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings, nil
}

// GetLowStock lists medicines with quantity under the threshold, lowest first
func (r *GormReportRepository) GetLowStock(ctx context.Context, threshold int) ([]report.LowStockItem, error) {
	var items []report.LowStockItem
	err := r.db.WithContext(ctx).Table("medicines m").
		Select(`
			m.id as medicine_id,
			m.name as name,
			m.batch_number as batch_number,
			m.quantity as quantity,
			m.price as price,
			COALESCE(s.name, '') as supplier_name,
			m.expiry_date as expiry_date
		`).
		Joins("LEFT JOIN suppliers s ON s.id = m.supplier_id").
		Where("m.quantity < ?", threshold).
		Order("m.quantity ASC").
		Order("m.name ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetPaymentMethodBreakdown groups sales within the range by payment method
func (r *GormReportRepository) GetPaymentMethodBreakdown(ctx context.Context, rng report.DateRange) ([]report.PaymentMethodBreakdown, error) {
	var rows []report.PaymentMethodBreakdown
	err := r.db.WithContext(ctx).Table("sales").
		Select(`
			payment_method,
			COUNT(*) as sale_count,
			COALESCE(SUM(total_amount), 0) as total_amount
		`).
		Where("sale_date >= ? AND sale_date < ?", rng.Start, rng.End).
		Group("payment_method").
		Order("total_amount DESC").
		Order("payment_method ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSalesForExport returns sales newest first. A nil range means all sales.
func (r *GormReportRepository) ListSalesForExport(ctx context.Context, rng *report.DateRange) ([]report.SaleExportRow, error) {
	query := r.db.WithContext(ctx).Table("sales s").
		Select(`
			s.id as sale_id,
			s.invoice_number,
			s.sale_date,
			s.customer_name,
			COALESCE(SUM(si.quantity), 0) as item_count,
			COALESCE(SUM(si.total_price), 0) as subtotal,
			s.discount,
			s.tax_amount,
			s.total_amount,
			s.payment_method
		`).
		Joins("LEFT JOIN sale_items si ON si.sale_id = s.id")
	if rng != nil {
		query = query.Where("s.sale_date >= ? AND s.sale_date < ?", rng.Start, rng.End)
	}

	var rows []report.SaleExportRow
	err := query.
		Group("s.id, s.invoice_number, s.sale_date, s.customer_name, s.discount, s.tax_amount, s.total_amount, s.payment_method").
		Order("s.sale_date DESC").
		Order("s.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListInventoryForExport returns every medicine ordered by quantity ascending
func (r *GormReportRepository) ListInventoryForExport(ctx context.Context) ([]report.InventoryExportRow, error) {
	var rows []report.InventoryExportRow
	err := r.db.WithContext(ctx).Table("medicines m").
		Select(`
			m.id as medicine_id,
			m.name,
			m.description,
			m.batch_number,
			m.quantity,
			m.price,
			COALESCE(s.name, '') as supplier_name,
			m.expiry_date
		`).
		Joins("LEFT JOIN suppliers s ON s.id = m.supplier_id").
		Order("m.quantity ASC").
		Order("m.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// parseDay reads a DATE() result. Drivers return either "2006-01-02" or a
// full timestamp for it.
func parseDay(s string) (time.Time, error) {
	if len(s) < len(shared.DateLayout) {
		return time.Time{}, fmt.Errorf("unexpected day value %q", s)
	}
	return time.ParseInLocation(shared.DateLayout, s[:len(shared.DateLayout)], time.UTC)
}

// Ensure GormReportRepository implements ReportRepository
var _ report.ReportRepository = (*GormReportRepository)(nil)
