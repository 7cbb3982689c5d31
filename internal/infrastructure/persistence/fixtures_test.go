package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/medstore/backend/internal/domain/catalog"
	"github.com/medstore/backend/internal/domain/partner"
	"github.com/medstore/backend/internal/domain/trade"
	"github.com/medstore/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a migrated in-memory SQLite database
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func seedSupplier(t *testing.T, db *gorm.DB, name string) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(partner.SupplierDetails{
		Name:    name,
		Contact: name + " Contact",
		Email:   "orders@" + name + ".example",
		Phone:   "555-0100",
	})
	require.NoError(t, err)
	require.NoError(t, NewGormSupplierRepository(db).Save(context.Background(), s))
	return s
}

func seedMedicine(t *testing.T, db *gorm.DB, name string, qty int, supplier *partner.Supplier) *catalog.Medicine {
	t.Helper()
	details := catalog.MedicineDetails{
		Name:        name,
		Description: name + " tablets",
		Price:       decimal.RequireFromString("2.50"),
		BatchNumber: "B-" + name,
		ExpiryDate:  time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	if supplier != nil {
		id := supplier.ID
		details.SupplierID = &id
	}
	m, err := catalog.NewMedicine(details)
	require.NoError(t, err)

	repo := NewGormMedicineRepository(db)
	require.NoError(t, repo.Save(context.Background(), m))
	if qty > 0 {
		require.NoError(t, repo.Increase(context.Background(), m.ID, qty))
		m.Quantity = qty
	}
	return m
}

func seedSale(t *testing.T, db *gorm.DB, invoice, customer, method string, at time.Time, lines ...saleLine) *trade.Sale {
	t.Helper()
	sale, err := trade.NewSale(customer, "", method)
	require.NoError(t, err)
	for _, l := range lines {
		require.NoError(t, sale.AddItem(l.medicineID, "", l.qty, decimal.RequireFromString(l.price)))
	}
	_, err = sale.ApplyPricing(decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, sale.AssignInvoiceNumber(invoice))
	sale.SaleDate = at
	require.NoError(t, NewGormSaleRepository(db).Create(context.Background(), sale))
	return sale
}

type saleLine struct {
	medicineID uint64
	qty        int
	price      string
}
