package report

import (
	"github.com/medstore/backend/internal/domain/report"
)

// OverviewResponse is everything the reports page shows for one month
type OverviewResponse struct {
	Year           int                             `json:"year"`
	Month          int                             `json:"month"`
	Summary        report.DashboardSummary         `json:"summary"`
	DailySales     []report.DailySales             `json:"daily_sales"`
	TopMedicines   []report.MedicineSalesRanking   `json:"top_medicines"`
	LowStock       []report.LowStockItem           `json:"low_stock"`
	PaymentMethods []report.PaymentMethodBreakdown `json:"payment_methods"`
}

// ExportType names the dataset of an export
type ExportType string

const (
	ExportSales     ExportType = "sales"
	ExportInventory ExportType = "inventory"
)

// ExportRequest selects an export. Dates are YYYY-MM-DD and only apply to sales.
type ExportRequest struct {
	Type      ExportType
	Format    string
	StartDate string
	EndDate   string
	// Detailed adds item counts, pricing breakdown and expiry columns
	Detailed bool
}
