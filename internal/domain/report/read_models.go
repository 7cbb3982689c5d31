package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummary is the headline figures on the dashboard
type DashboardSummary struct {
	TotalMedicines    int64           `json:"total_medicines"`
	TotalSalesAmount  decimal.Decimal `json:"total_sales_amount"`
	LowStockMedicines int64           `json:"low_stock_medicines"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

// DailySales is the sales amount and count of one calendar day
type DailySales struct {
	Date       time.Time       `json:"date"`
	SaleCount  int64           `json:"sale_count"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// MedicineSalesRanking is a medicine ordered by quantity sold
type MedicineSalesRanking struct {
	Rank          int             `json:"rank"`
	MedicineID    uint64          `json:"medicine_id"`
	MedicineName  string          `json:"medicine_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalSales    decimal.Decimal `json:"total_sales"`
}

// LowStockItem is a medicine under the low stock threshold
type LowStockItem struct {
	MedicineID   uint64          `json:"medicine_id"`
	Name         string          `json:"name"`
	BatchNumber  string          `json:"batch_number"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	SupplierName string          `json:"supplier_name"`
	ExpiryDate   time.Time       `json:"expiry_date"`
}

// PaymentMethodBreakdown is the count and total per payment method
type PaymentMethodBreakdown struct {
	PaymentMethod string          `json:"payment_method"`
	SaleCount     int64           `json:"sale_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// SaleExportRow is one sale in an export. ItemCount is the total units sold.
type SaleExportRow struct {
	SaleID        uint64
	InvoiceNumber string
	SaleDate      time.Time
	CustomerName  string
	ItemCount     int64
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	PaymentMethod string
}

// InventoryExportRow is one medicine in an export, with the supplier name joined
type InventoryExportRow struct {
	MedicineID   uint64
	Name         string
	Description  string
	BatchNumber  string
	Quantity     int
	Price        decimal.Decimal
	SupplierName string
	ExpiryDate   time.Time
}

// DateRange is a half-open [Start, End) interval
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MonthRange returns the range covering a calendar month in UTC
func MonthRange(year int, month time.Month) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// Days lists every calendar day in the range
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
