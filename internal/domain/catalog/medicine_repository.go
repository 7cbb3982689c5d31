package catalog

import (
	"context"

	"github.com/medstore/backend/internal/domain/shared"
)

// MedicineRepository defines the interface for medicine persistence
type MedicineRepository interface {
	// FindByID finds a medicine by its ID, with the supplier name joined
	FindByID(ctx context.Context, id uint64) (*Medicine, error)

	// FindAll finds medicines matching the filter. A numeric search term also
	// matches the medicine id exactly.
	FindAll(ctx context.Context, filter shared.Filter) ([]Medicine, error)

	// Count counts medicines matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindBySupplier lists the medicines referencing a supplier
	FindBySupplier(ctx context.Context, supplierID uint64) ([]Medicine, error)

	// CountBySupplier counts the medicines referencing a supplier
	CountBySupplier(ctx context.Context, supplierID uint64) (int64, error)

	// HasLedgerHistory reports whether any purchase or sale item references the medicine
	HasLedgerHistory(ctx context.Context, id uint64) (bool, error)

	// Save creates or updates a medicine's metadata. Quantity is written on create only.
	Save(ctx context.Context, medicine *Medicine) error

	// Delete deletes a medicine
	Delete(ctx context.Context, id uint64) error
}

// StockRepository mutates the quantity running total. It is only handed out
// inside a ledger transaction.
type StockRepository interface {
	// Increase adds qty units to the medicine
	Increase(ctx context.Context, id uint64, qty int) error

	// DecreaseIfAvailable subtracts qty units only if at least qty are on hand.
	// Returns false without changing anything when stock is short.
	DecreaseIfAvailable(ctx context.Context, id uint64, qty int) (bool, error)
}
