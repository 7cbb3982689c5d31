package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when BusinessMetrics is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Metric attribute keys.
var (
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrMedicineID    = attribute.Key("medicine_id")
)

// LowStockCounter reports how many medicines are below the low-stock threshold.
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // default 5m
	LowStock        LowStockCounter
}

// BusinessMetrics counts committed sales and purchases and samples the
// low-stock gauge. It satisfies the trade ledgers' LedgerMetrics hook.
type BusinessMetrics struct {
	logger *zap.Logger

	salesTotal       *Counter
	salesAmountTotal *FloatCounter
	unitsSoldTotal   *Counter
	purchasesTotal   *Counter
	purchaseAmount   *FloatCounter
	unitsBoughtTotal *Counter
	stockShortages   *Counter
	lowStockCount    *Gauge

	lowStock        LowStockCounter
	collectInterval time.Duration
	stopChan        chan struct{}
	stopOnce        sync.Once
	startOnce       sync.Once
	wg              sync.WaitGroup
}

// NewBusinessMetrics registers the medstore business instruments on cfg.Meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.CollectInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	bm := &BusinessMetrics{
		logger:          logger,
		lowStock:        cfg.LowStock,
		collectInterval: interval,
		stopChan:        make(chan struct{}),
	}

	var err error
	if bm.salesTotal, err = NewCounter(cfg.Meter, "medstore_sales_total", "Committed sales", "{sales}"); err != nil {
		return nil, err
	}
	if bm.salesAmountTotal, err = NewFloatCounter(cfg.Meter, "medstore_sales_amount_total", "Revenue from committed sales", "{currency}"); err != nil {
		return nil, err
	}
	if bm.unitsSoldTotal, err = NewCounter(cfg.Meter, "medstore_units_sold_total", "Medicine units sold", "{units}"); err != nil {
		return nil, err
	}
	if bm.purchasesTotal, err = NewCounter(cfg.Meter, "medstore_purchases_total", "Committed purchases", "{purchases}"); err != nil {
		return nil, err
	}
	if bm.purchaseAmount, err = NewFloatCounter(cfg.Meter, "medstore_purchase_amount_total", "Spend on committed purchases", "{currency}"); err != nil {
		return nil, err
	}
	if bm.unitsBoughtTotal, err = NewCounter(cfg.Meter, "medstore_units_purchased_total", "Medicine units received", "{units}"); err != nil {
		return nil, err
	}
	if bm.stockShortages, err = NewCounter(cfg.Meter, "medstore_stock_shortage_total", "Sales rejected for insufficient stock", "{events}"); err != nil {
		return nil, err
	}
	if bm.lowStockCount, err = NewGauge(cfg.Meter, "medstore_low_stock_medicines", "Medicines below the low-stock threshold", "{medicines}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// SaleRecorded counts a committed sale.
func (bm *BusinessMetrics) SaleRecorded(ctx context.Context, paymentMethod string, total decimal.Decimal, units int) {
	attrs := []attribute.KeyValue{AttrPaymentMethod.String(paymentMethod)}
	bm.salesTotal.Inc(ctx, attrs...)
	bm.salesAmountTotal.Add(ctx, total.InexactFloat64(), attrs...)
	bm.unitsSoldTotal.Add(ctx, int64(units), attrs...)
}

// PurchaseRecorded counts a committed purchase.
func (bm *BusinessMetrics) PurchaseRecorded(ctx context.Context, total decimal.Decimal, units int) {
	bm.purchasesTotal.Inc(ctx)
	bm.purchaseAmount.Add(ctx, total.InexactFloat64())
	bm.unitsBoughtTotal.Add(ctx, int64(units))
}

// StockShortage counts a sale line rejected for insufficient stock.
func (bm *BusinessMetrics) StockShortage(ctx context.Context, medicineID uint64) {
	bm.stockShortages.Inc(ctx, AttrMedicineID.Int64(int64(medicineID)))
}

// Start samples the low-stock gauge immediately and then every
// CollectInterval until ctx is done or Stop is called. Later calls are no-ops.
func (bm *BusinessMetrics) Start(ctx context.Context) {
	if bm.lowStock == nil {
		return
	}
	bm.startOnce.Do(func() {
		bm.wg.Add(1)
		go bm.run(ctx)
	})
}

func (bm *BusinessMetrics) run(ctx context.Context) {
	defer bm.wg.Done()

	ticker := time.NewTicker(bm.collectInterval)
	defer ticker.Stop()

	bm.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-bm.stopChan:
			return
		case <-ticker.C:
			bm.collect(ctx)
		}
	}
}

func (bm *BusinessMetrics) collect(ctx context.Context) {
	count, err := bm.lowStock.CountLowStock(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect low stock count", zap.Error(err))
		return
	}
	bm.lowStockCount.Record(ctx, count)
}

// Stop ends periodic collection and waits for the collector to exit.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() { close(bm.stopChan) })
	bm.wg.Wait()
}
