package trade

import (
	"context"
	"time"

	"github.com/medstore/backend/internal/domain/shared"
)

// PurchaseRepository defines the interface for purchase persistence
type PurchaseRepository interface {
	// FindByID loads a purchase with its items
	FindByID(ctx context.Context, id uint64) (*Purchase, error)

	// FindAll lists purchases newest first. Filters["supplier_id"] narrows to one supplier.
	FindAll(ctx context.Context, filter shared.Filter) ([]Purchase, error)

	// Count counts purchases matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindRecentBySupplier returns the latest purchases from a supplier
	FindRecentBySupplier(ctx context.Context, supplierID uint64, limit int) ([]Purchase, error)

	// CountBySupplier counts purchases from a supplier
	CountBySupplier(ctx context.Context, supplierID uint64) (int64, error)

	// ExistsByInvoiceNumber checks invoice number uniqueness
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)

	// Create inserts a purchase and its items
	Create(ctx context.Context, purchase *Purchase) error
}

// SaleFilter narrows a sale listing
type SaleFilter struct {
	shared.Filter
	// StartDate is inclusive
	StartDate *time.Time
	// EndDate is inclusive of the whole day
	EndDate  *time.Time
	Customer string
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID loads a sale with its items
	FindByID(ctx context.Context, id uint64) (*Sale, error)

	// FindAll lists sales newest first
	FindAll(ctx context.Context, filter SaleFilter) ([]Sale, error)

	// Count counts sales matching the filter
	Count(ctx context.Context, filter SaleFilter) (int64, error)

	// Create inserts a sale and its items
	Create(ctx context.Context, sale *Sale) error
}

// InvoiceSequenceRepository hands out monotonic per-prefix numbers
type InvoiceSequenceRepository interface {
	// Next increments the counter for prefix and returns the new value.
	// Must run inside the transaction that uses the number.
	Next(ctx context.Context, prefix string) (int64, error)
}
