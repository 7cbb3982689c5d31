package persistence

import (
	"context"
	"time"

	"github.com/medstore/backend/internal/domain/catalog"
	"github.com/medstore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const medicineWithSupplier = "medicines.*, suppliers.name AS supplier_name"

// medicineUpdateColumns are the metadata columns an update may touch.
// quantity is owned by the ledgers.
var medicineUpdateColumns = []string{
	"name", "description", "price", "supplier_id", "batch_number", "expiry_date", "updated_at",
}

// GormMedicineRepository implements MedicineRepository and StockRepository using GORM
type GormMedicineRepository struct {
	db *gorm.DB
}

// NewGormMedicineRepository creates a new GormMedicineRepository
func NewGormMedicineRepository(db *gorm.DB) *GormMedicineRepository {
	return &GormMedicineRepository{db: db}
}

func (r *GormMedicineRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("medicines").
		Select(medicineWithSupplier).
		Joins("LEFT JOIN suppliers ON suppliers.id = medicines.supplier_id")
}

// FindByID finds a medicine by its ID
func (r *GormMedicineRepository) FindByID(ctx context.Context, id uint64) (*catalog.Medicine, error) {
	var medicine catalog.Medicine
	if err := r.joined(ctx).Where("medicines.id = ?", id).Take(&medicine).Error; err != nil {
		return nil, notFound(err, "Medicine", id)
	}
	return &medicine, nil
}

// FindAll finds all medicines matching the filter
func (r *GormMedicineRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Medicine, error) {
	var medicines []catalog.Medicine
	query := r.applySearch(r.joined(ctx), filter).
		Order(orderClause("medicines", filter, MedicineSortFields, "name", "ASC")).
		Order("medicines.id ASC")
	if err := paginate(query, filter).Find(&medicines).Error; err != nil {
		return nil, err
	}
	return medicines, nil
}

// Count counts medicines matching the filter
func (r *GormMedicineRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Medicine{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormMedicineRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	pattern := likePattern(filter.Search)
	if id, ok := searchID(filter.Search); ok {
		return query.Where(
			`(LOWER(medicines.name) LIKE ? ESCAPE '\' OR LOWER(medicines.description) LIKE ? ESCAPE '\' OR medicines.id = ?)`,
			pattern, pattern, id,
		)
	}
	return query.Where(
		`(LOWER(medicines.name) LIKE ? ESCAPE '\' OR LOWER(medicines.description) LIKE ? ESCAPE '\')`,
		pattern, pattern,
	)
}

// FindBySupplier lists the medicines referencing a supplier
func (r *GormMedicineRepository) FindBySupplier(ctx context.Context, supplierID uint64) ([]catalog.Medicine, error) {
	var medicines []catalog.Medicine
	if err := r.joined(ctx).
		Where("medicines.supplier_id = ?", supplierID).
		Order("medicines.name ASC").
		Find(&medicines).Error; err != nil {
		return nil, err
	}
	return medicines, nil
}

// CountBySupplier counts the medicines referencing a supplier
func (r *GormMedicineRepository) CountBySupplier(ctx context.Context, supplierID uint64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Medicine{}).
		Where("supplier_id = ?", supplierID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasLedgerHistory reports whether any purchase or sale item references the medicine
func (r *GormMedicineRepository) HasLedgerHistory(ctx context.Context, id uint64) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Raw(
		`SELECT EXISTS (SELECT 1 FROM purchase_items WHERE medicine_id = ?)
		     OR EXISTS (SELECT 1 FROM sale_items WHERE medicine_id = ?)`,
		id, id,
	).Scan(&exists).Error
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Save creates or updates a medicine. Quantity is written on create only.
func (r *GormMedicineRepository) Save(ctx context.Context, medicine *catalog.Medicine) error {
	db := r.db.WithContext(ctx)
	if medicine.ID == 0 {
		return writeError(db.Create(medicine).Error, "Medicine already exists")
	}

	result := db.Model(medicine).Select(medicineUpdateColumns).Updates(medicine)
	if result.Error != nil {
		return writeError(result.Error, "Medicine already exists")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Medicine", medicine.ID)
	}
	return nil
}

// Delete deletes a medicine
func (r *GormMedicineRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Medicine{}, "id = ?", id)
	if result.Error != nil {
		return writeError(result.Error, "Medicine is referenced by ledger records")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Medicine", id)
	}
	return nil
}

// Increase adds qty units to the medicine
func (r *GormMedicineRepository) Increase(ctx context.Context, id uint64, qty int) error {
	if qty <= 0 {
		return shared.NewValidationError("Quantity must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&catalog.Medicine{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Medicine", id)
	}
	return nil
}

// DecreaseIfAvailable subtracts qty units in one conditional UPDATE, so two
// concurrent sales can never both take the last units.
func (r *GormMedicineRepository) DecreaseIfAvailable(ctx context.Context, id uint64, qty int) (bool, error) {
	if qty <= 0 {
		return false, shared.NewValidationError("Quantity must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&catalog.Medicine{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumns(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

var (
	_ catalog.MedicineRepository = (*GormMedicineRepository)(nil)
	_ catalog.StockRepository    = (*GormMedicineRepository)(nil)
)
