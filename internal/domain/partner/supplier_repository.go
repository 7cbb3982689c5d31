package partner

import (
	"context"

	"github.com/medstore/backend/internal/domain/shared"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uint64) (*Supplier, error)

	// FindAll finds suppliers matching the filter, searching name, contact and email
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)

	// Count counts suppliers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByID checks whether a supplier exists
	ExistsByID(ctx context.Context, id uint64) (bool, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error

	// Delete deletes a supplier
	Delete(ctx context.Context, id uint64) error
}
