package report

import (
	"context"
)

// ReportRepository answers read-only aggregation queries over the ledgers and catalog
type ReportRepository interface {
	// GetDashboardSummary counts medicines, sums all sales and counts low stock medicines
	GetDashboardSummary(ctx context.Context, lowStockThreshold int) (*DashboardSummary, error)

	// GetDailySales returns one row per day that has sales within the range
	GetDailySales(ctx context.Context, r DateRange) ([]DailySales, error)

	// GetTopMedicines returns the top n medicines by quantity sold within the range
	GetTopMedicines(ctx context.Context, r DateRange, n int) ([]MedicineSalesRanking, error)

	// GetLowStock lists medicines with quantity under the threshold, lowest first
	GetLowStock(ctx context.Context, threshold int) ([]LowStockItem, error)

	// GetPaymentMethodBreakdown groups sales within the range by payment method
	GetPaymentMethodBreakdown(ctx context.Context, r DateRange) ([]PaymentMethodBreakdown, error)

	// ListSalesForExport returns sales newest first. A nil range means all sales.
	ListSalesForExport(ctx context.Context, r *DateRange) ([]SaleExportRow, error)

	// ListInventoryForExport returns every medicine ordered by quantity ascending
	ListInventoryForExport(ctx context.Context) ([]InventoryExportRow, error)
}
