package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormMedicineRepository_DecreaseIfAvailable_SQL(t *testing.T) {
	t.Run("guards the update on available quantity", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormMedicineRepository(db.DB)

		mock.ExpectExec(`UPDATE "medicines" SET "quantity"=quantity - \$1,"updated_at"=\$2 WHERE id = \$3 AND quantity >= \$4`).
			WithArgs(3, sqlmock.AnyArg(), uint64(11), 3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.DecreaseIfAvailable(context.Background(), 11, 3)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no affected row means short stock", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormMedicineRepository(db.DB)

		mock.ExpectExec(`UPDATE "medicines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.DecreaseIfAvailable(context.Background(), 11, 500)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates driver errors", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormMedicineRepository(db.DB)

		mock.ExpectExec(`UPDATE "medicines" SET`).WillReturnError(assert.AnError)

		_, err := repo.DecreaseIfAvailable(context.Background(), 11, 1)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestGormInvoiceSequenceRepository_Next_SQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormInvoiceSequenceRepository(db.DB)

	mock.ExpectExec(`INSERT INTO "invoice_sequences" .* ON CONFLICT \("prefix"\) DO UPDATE SET "last_value"=invoice_sequences.last_value \+ 1`).
		WithArgs("INV-20260501", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "invoice_sequences" WHERE prefix = \$1`).
		WithArgs("INV-20260501", 1).
		WillReturnRows(sqlmock.NewRows([]string{"prefix", "last_value"}).AddRow("INV-20260501", 42))

	got, err := repo.Next(context.Background(), "INV-20260501")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
