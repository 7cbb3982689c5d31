package trade

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerMetrics receives a notification for every committed ledger event
type LedgerMetrics interface {
	SaleRecorded(ctx context.Context, paymentMethod string, total decimal.Decimal, units int)
	PurchaseRecorded(ctx context.Context, total decimal.Decimal, units int)
	StockShortage(ctx context.Context, medicineID uint64)
}

type noopLedgerMetrics struct{}

func (noopLedgerMetrics) SaleRecorded(context.Context, string, decimal.Decimal, int) {}
func (noopLedgerMetrics) PurchaseRecorded(context.Context, decimal.Decimal, int)     {}
func (noopLedgerMetrics) StockShortage(context.Context, uint64)                      {}
