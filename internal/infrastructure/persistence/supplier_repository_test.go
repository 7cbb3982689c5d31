package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockSupplierRepository creates a GormSupplierRepository with a mocked SQL connection
func newMockSupplierRepository(t *testing.T) (*GormSupplierRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSupplierRepository(gormDB), mock, mockDB
}

func TestGormSupplierRepository_FindByID_SQL(t *testing.T) {
	t.Run("finds existing supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "name", "contact", "email", "phone", "address", "gst_number"}).
			AddRow(7, now, now, "Acme", "Jo", "jo@acme.example", "555-0100", "1 Main St", "GST1")

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(uint64(7), 1).
			WillReturnRows(rows)

		supplier, err := repo.FindByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), supplier.ID)
		assert.Equal(t, "GST1", supplier.GSTNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE id = \$1`).
			WithArgs(uint64(8), 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), 8)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSupplierRepository_Search(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSupplierRepository(db)
	ctx := context.Background()

	seedSupplier(t, db, "Acme")
	seedSupplier(t, db, "Medline")
	seedSupplier(t, db, "Zenith")

	t.Run("lists by name", func(t *testing.T) {
		suppliers, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, suppliers, 3)
		assert.Equal(t, "Acme", suppliers[0].Name)
		assert.Equal(t, "Zenith", suppliers[2].Name)
	})

	t.Run("searches name contact and email", func(t *testing.T) {
		for _, term := range []string{"medline", "MEDLINE CONTACT", "orders@medline"} {
			filter := shared.DefaultFilter()
			filter.Search = term
			suppliers, err := repo.FindAll(ctx, filter)
			require.NoError(t, err, term)
			require.Len(t, suppliers, 1, term)
			assert.Equal(t, "Medline", suppliers[0].Name)
		}
	})

	t.Run("count honours search", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "e"
		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestGormSupplierRepository_SaveAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSupplierRepository(db)
	ctx := context.Background()

	supplier := seedSupplier(t, db, "Acme")
	require.NotZero(t, supplier.ID)

	exists, err := repo.ExistsByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	supplier.Phone = "555-0199"
	require.NoError(t, repo.Save(ctx, supplier))
	got, err := repo.FindByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0199", got.Phone)

	require.NoError(t, repo.Delete(ctx, supplier.ID))
	exists, err = repo.ExistsByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, repo.Delete(ctx, supplier.ID), shared.ErrNotFound)
}

func TestGormSupplierRepository_PurchaseHistory(t *testing.T) {
	db := newTestDB(t)
	purchases := NewGormPurchaseRepository(db)
	ctx := context.Background()

	supplier := seedSupplier(t, db, "Acme")
	other := seedSupplier(t, db, "Zenith")
	m := seedMedicine(t, db, "Paracetamol", 0, supplier)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, invoice := range []string{"PO-1", "PO-2", "PO-3"} {
		p, err := trade.NewPurchase(supplier.ID, invoice, trade.PaymentStatusPending)
		require.NoError(t, err)
		require.NoError(t, p.AddItem(m.ID, "B1", 10, decimal.NewFromInt(2), nil))
		p.PurchaseDate = base.AddDate(0, 0, i)
		require.NoError(t, purchases.Create(ctx, p))
	}
	p, err := trade.NewPurchase(other.ID, "ZX-1", trade.PaymentStatusPaid)
	require.NoError(t, err)
	require.NoError(t, p.AddItem(m.ID, "B9", 1, decimal.NewFromInt(2), nil))
	require.NoError(t, purchases.Create(ctx, p))

	recent, err := purchases.FindRecentBySupplier(ctx, supplier.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "PO-3", recent[0].InvoiceNumber)
	assert.Equal(t, "PO-2", recent[1].InvoiceNumber)
	assert.Equal(t, "Acme", recent[0].SupplierName)
	require.Len(t, recent[0].Items, 1)
	assert.Equal(t, "Paracetamol", recent[0].Items[0].MedicineName)

	count, err := purchases.CountBySupplier(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
