package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSaleLedger_RecordSale(t *testing.T) {
	ctx := context.Background()
	today := trade.SaleInvoicePrefix(time.Now())

	t.Run("records sale and drops zero quantity lines", func(t *testing.T) {
		m := newLedgerMocks()
		m.medicines.On("FindByID", ctx, uint64(1)).Return(testMedicine(1, "Paracetamol", 50, "2.00"), nil)
		m.stock.On("DecreaseIfAvailable", ctx, uint64(1), 5).Return(true, nil)
		m.sequences.On("Next", ctx, today).Return(int64(1), nil)
		m.sales.On("Create", ctx, mock.AnythingOfType("*trade.Sale")).Return(nil)

		metrics := &spyMetrics{}
		ledger := NewSaleLedger(m.scope, m.sales)
		ledger.SetMetrics(metrics)

		resp, err := ledger.RecordSale(ctx, RecordSaleRequest{
			CustomerName:    "Asha",
			DiscountPercent: decimal.NewFromInt(10),
			TaxPercent:      decimal.NewFromInt(5),
			Items: []SaleItemInput{
				{MedicineID: 1, Quantity: 5, UnitPrice: decimal.NewFromInt(20)},
				{MedicineID: 2, Quantity: 0, UnitPrice: decimal.NewFromInt(99)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, today+"-0001", resp.InvoiceNumber)
		assert.Equal(t, trade.DefaultPaymentMethod, resp.PaymentMethod)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(100)))
		assert.True(t, resp.Discount.Equal(decimal.NewFromInt(10)))
		assert.True(t, resp.TaxAmount.Equal(decimal.RequireFromString("4.5")))
		assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("94.5")))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "B-Paracetamol", resp.Items[0].BatchNumber)
		assert.Equal(t, "Paracetamol", resp.Items[0].MedicineName)

		assert.Equal(t, 1, metrics.sales)
		assert.Equal(t, 5, metrics.lastUnits)
		m.medicines.AssertNotCalled(t, "FindByID", ctx, uint64(2))
		m.stock.AssertExpectations(t)
		m.sales.AssertExpectations(t)
	})

	t.Run("falls back to list price when line price is zero", func(t *testing.T) {
		m := newLedgerMocks()
		m.medicines.On("FindByID", ctx, uint64(3)).Return(testMedicine(3, "Cetirizine", 10, "7.25"), nil)
		m.stock.On("DecreaseIfAvailable", ctx, uint64(3), 2).Return(true, nil)
		m.sequences.On("Next", ctx, today).Return(int64(12), nil)
		m.sales.On("Create", ctx, mock.AnythingOfType("*trade.Sale")).Return(nil)

		resp, err := NewSaleLedger(m.scope, m.sales).RecordSale(ctx, RecordSaleRequest{
			CustomerName:  "Ravi",
			PaymentMethod: "Card",
			Items:         []SaleItemInput{{MedicineID: 3, Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, today+"-0012", resp.InvoiceNumber)
		assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("14.5")))
		assert.Equal(t, "Card", resp.PaymentMethod)
	})

	t.Run("insufficient stock names the medicine and writes nothing", func(t *testing.T) {
		m := newLedgerMocks()
		m.medicines.On("FindByID", ctx, uint64(1)).Return(testMedicine(1, "Paracetamol", 50, "2.00"), nil)
		m.medicines.On("FindByID", ctx, uint64(2)).Return(testMedicine(2, "Amoxicillin", 3, "9.00"), nil)
		m.stock.On("DecreaseIfAvailable", ctx, uint64(1), 5).Return(true, nil)
		m.stock.On("DecreaseIfAvailable", ctx, uint64(2), 4).Return(false, nil)

		metrics := &spyMetrics{}
		ledger := NewSaleLedger(m.scope, m.sales)
		ledger.SetMetrics(metrics)

		_, err := ledger.RecordSale(ctx, RecordSaleRequest{
			CustomerName: "Asha",
			Items: []SaleItemInput{
				{MedicineID: 1, Quantity: 5, UnitPrice: decimal.NewFromInt(2)},
				{MedicineID: 2, Quantity: 4, UnitPrice: decimal.NewFromInt(9)},
			},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, "Not enough stock for Amoxicillin", err.Error())
		assert.Equal(t, []uint64{2}, metrics.shortages)
		assert.Zero(t, metrics.sales)
		m.sequences.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
		m.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown medicine is not found", func(t *testing.T) {
		m := newLedgerMocks()
		m.medicines.On("FindByID", ctx, uint64(9)).Return(nil, shared.NewNotFoundError("Medicine", 9))

		_, err := NewSaleLedger(m.scope, m.sales).RecordSale(ctx, RecordSaleRequest{
			CustomerName: "Asha",
			Items:        []SaleItemInput{{MedicineID: 9, Quantity: 1}},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("persistence failure becomes transaction error", func(t *testing.T) {
		m := newLedgerMocks()
		m.medicines.On("FindByID", ctx, uint64(1)).Return(testMedicine(1, "Paracetamol", 50, "2.00"), nil)
		m.stock.On("DecreaseIfAvailable", ctx, uint64(1), 1).Return(true, nil)
		m.sequences.On("Next", ctx, today).Return(int64(1), nil)
		m.sales.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

		_, err := NewSaleLedger(m.scope, m.sales).RecordSale(ctx, RecordSaleRequest{
			CustomerName: "Asha",
			Items:        []SaleItemInput{{MedicineID: 1, Quantity: 1}},
		})
		assert.ErrorIs(t, err, shared.ErrTransactionFailed)
	})
}

func TestSaleLedger_RecordSale_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		req  RecordSaleRequest
		code string
	}{
		{
			name: "no positive lines",
			req: RecordSaleRequest{
				CustomerName: "Asha",
				Items:        []SaleItemInput{{MedicineID: 1, Quantity: 0}, {MedicineID: 2, Quantity: -1}},
			},
			code: shared.CodeValidation,
		},
		{
			name: "discount over 100",
			req: RecordSaleRequest{
				CustomerName:    "Asha",
				DiscountPercent: decimal.NewFromInt(101),
				Items:           []SaleItemInput{{MedicineID: 1, Quantity: 1}},
			},
			code: "INVALID_DISCOUNT",
		},
		{
			name: "negative tax",
			req: RecordSaleRequest{
				CustomerName: "Asha",
				TaxPercent:   decimal.NewFromInt(-1),
				Items:        []SaleItemInput{{MedicineID: 1, Quantity: 1}},
			},
			code: "INVALID_TAX",
		},
		{
			name: "negative unit price",
			req: RecordSaleRequest{
				CustomerName: "Asha",
				Items:        []SaleItemInput{{MedicineID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("-3.00")}},
			},
			code: "INVALID_PRICE",
		},
		{
			name: "missing customer",
			req: RecordSaleRequest{
				Items: []SaleItemInput{{MedicineID: 1, Quantity: 1}},
			},
			code: "INVALID_CUSTOMER_NAME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newLedgerMocks()
			_, err := NewSaleLedger(m.scope, m.sales).RecordSale(ctx, tt.req)
			require.Error(t, err)
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
			m.medicines.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
			m.stock.AssertNotCalled(t, "DecreaseIfAvailable", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSaleLedger_ListSales(t *testing.T) {
	ctx := context.Background()

	t.Run("parses date range and normalizes paging", func(t *testing.T) {
		m := newLedgerMocks()
		m.sales.On("FindAll", ctx, mock.MatchedBy(func(f trade.SaleFilter) bool {
			return f.Page == 1 && f.PageSize == shared.DefaultPageSize &&
				f.StartDate != nil && f.StartDate.Format(shared.DateLayout) == "2026-10-01" &&
				f.EndDate != nil && f.EndDate.Format(shared.DateLayout) == "2026-10-31" &&
				f.Customer == "asha"
		})).Return([]trade.Sale{{ID: 7, InvoiceNumber: "INV-20261005-0001"}}, nil)
		m.sales.On("Count", ctx, mock.Anything).Return(int64(1), nil)

		sales, total, err := NewSaleLedger(m.scope, m.sales).ListSales(ctx, SaleListFilter{
			StartDate: "2026-10-01",
			EndDate:   "2026-10-31",
			Customer:  " asha ",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, sales, 1)
		assert.Equal(t, "INV-20261005-0001", sales[0].InvoiceNumber)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		m := newLedgerMocks()
		_, _, err := NewSaleLedger(m.scope, m.sales).ListSales(ctx, SaleListFilter{StartDate: "01/10/2026"})
		assert.ErrorIs(t, err, shared.NewValidationError(""))
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		m := newLedgerMocks()
		_, _, err := NewSaleLedger(m.scope, m.sales).ListSales(ctx, SaleListFilter{StartDate: "2026-10-02", EndDate: "2026-10-01"})
		assert.ErrorIs(t, err, shared.NewValidationError(""))
	})
}

func TestSaleLedger_GetSale(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	sale := &trade.Sale{
		ID:            4,
		InvoiceNumber: "INV-20261017-0004",
		CustomerName:  "Asha",
		TotalAmount:   decimal.NewFromInt(40),
		Items: []trade.SaleItem{
			{ID: 1, MedicineID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(20), TotalPrice: decimal.NewFromInt(40), MedicineName: "Paracetamol"},
		},
	}
	m.sales.On("FindByID", ctx, uint64(4)).Return(sale, nil)
	m.sales.On("FindByID", ctx, uint64(5)).Return(nil, shared.NewNotFoundError("Sale", 5))

	ledger := NewSaleLedger(m.scope, m.sales)
	resp, err := ledger.GetSale(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ItemCount)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(40)))

	_, err = ledger.GetSale(ctx, 5)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
