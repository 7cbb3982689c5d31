package report

import (
	"context"
	"time"

	"github.com/medstore/backend/internal/domain/catalog"
	"github.com/medstore/backend/internal/domain/report"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultTopMedicines is how many medicines the top sellers list shows
const DefaultTopMedicines = 10

// ReportService answers read-only questions about stock and sales
type ReportService struct {
	repo report.ReportRepository
	now  func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(repo report.ReportRepository) *ReportService {
	return &ReportService{
		repo: repo,
		now:  time.Now,
	}
}

// Dashboard returns the medicine count, lifetime sales and low stock count
func (s *ReportService) Dashboard(ctx context.Context) (*report.DashboardSummary, error) {
	summary, err := s.repo.GetDashboardSummary(ctx, catalog.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	summary.LowStockThreshold = catalog.LowStockThreshold
	return summary, nil
}

// MonthlySales returns one entry per calendar day of the month, with zero
// for days without sales
func (s *ReportService) MonthlySales(ctx context.Context, year, month int) ([]report.DailySales, error) {
	r, err := s.monthRange(year, month)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.GetDailySales(ctx, r)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]report.DailySales, len(rows))
	for _, row := range rows {
		byDay[row.Date.UTC().Format(shared.DateLayout)] = row
	}

	days := r.Days()
	out := make([]report.DailySales, len(days))
	for i, day := range days {
		if row, ok := byDay[day.Format(shared.DateLayout)]; ok {
			row.Date = day
			out[i] = row
			continue
		}
		out[i] = report.DailySales{Date: day, TotalSales: decimal.Zero}
	}
	return out, nil
}

// TopMedicines ranks medicines by quantity sold in [start, end]
func (s *ReportService) TopMedicines(ctx context.Context, start, end time.Time, n int) ([]report.MedicineSalesRanking, error) {
	if n <= 0 {
		n = DefaultTopMedicines
	}
	rankings, err := s.repo.GetTopMedicines(ctx, inclusiveRange(start, end), n)
	if err != nil {
		return nil, err
	}
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings, nil
}

// LowStock lists medicines under the threshold, lowest quantity first
func (s *ReportService) LowStock(ctx context.Context) ([]report.LowStockItem, error) {
	return s.repo.GetLowStock(ctx, catalog.LowStockThreshold)
}

// PaymentMethods returns the count and total per payment method in [start, end]
func (s *ReportService) PaymentMethods(ctx context.Context, start, end time.Time) ([]report.PaymentMethodBreakdown, error) {
	return s.repo.GetPaymentMethodBreakdown(ctx, inclusiveRange(start, end))
}

// Overview assembles the reports page for a month. Zero year or month means
// the current one.
func (s *ReportService) Overview(ctx context.Context, year, month int) (*OverviewResponse, error) {
	now := s.now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	r, err := s.monthRange(year, month)
	if err != nil {
		return nil, err
	}

	summary, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := s.MonthlySales(ctx, year, month)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.GetTopMedicines(ctx, r, DefaultTopMedicines)
	if err != nil {
		return nil, err
	}
	for i := range top {
		top[i].Rank = i + 1
	}
	lowStock, err := s.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	methods, err := s.repo.GetPaymentMethodBreakdown(ctx, r)
	if err != nil {
		return nil, err
	}

	return &OverviewResponse{
		Year:           year,
		Month:          month,
		Summary:        *summary,
		DailySales:     daily,
		TopMedicines:   top,
		LowStock:       lowStock,
		PaymentMethods: methods,
	}, nil
}

func (s *ReportService) monthRange(year, month int) (report.DateRange, error) {
	if month < 1 || month > 12 {
		return report.DateRange{}, shared.NewValidationError("Month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return report.DateRange{}, shared.NewValidationError("Year %d is out of range", year)
	}
	return report.MonthRange(year, time.Month(month)), nil
}

// inclusiveRange turns calendar days [start, end] into the half-open range
// ending at midnight after end
func inclusiveRange(start, end time.Time) report.DateRange {
	return report.DateRange{
		Start: shared.StartOfDay(start),
		End:   shared.StartOfDay(end).AddDate(0, 0, 1),
	}
}
