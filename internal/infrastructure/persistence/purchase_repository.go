package persistence

import (
	"context"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormPurchaseRepository implements PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

func (r *GormPurchaseRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("purchases").
		Select("purchases.*, suppliers.name AS supplier_name").
		Joins("LEFT JOIN suppliers ON suppliers.id = purchases.supplier_id")
}

// FindByID loads a purchase with its items
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uint64) (*trade.Purchase, error) {
	var purchase trade.Purchase
	if err := r.joined(ctx).Where("purchases.id = ?", id).Take(&purchase).Error; err != nil {
		return nil, notFound(err, "Purchase", id)
	}
	purchases := []trade.Purchase{purchase}
	if err := r.attachItems(ctx, purchases); err != nil {
		return nil, err
	}
	return &purchases[0], nil
}

// FindAll lists purchases newest first
func (r *GormPurchaseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Purchase, error) {
	var purchases []trade.Purchase
	query := r.applyFilter(r.joined(ctx), filter).
		Order(orderClause("purchases", filter, PurchaseSortFields, "purchase_date", "DESC")).
		Order("purchases.id DESC")
	if err := paginate(query, filter).Find(&purchases).Error; err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// Count counts purchases matching the filter
func (r *GormPurchaseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.Purchase{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindRecentBySupplier returns the latest purchases from a supplier
func (r *GormPurchaseRepository) FindRecentBySupplier(ctx context.Context, supplierID uint64, limit int) ([]trade.Purchase, error) {
	if limit <= 0 {
		limit = shared.DefaultPageSize
	}
	var purchases []trade.Purchase
	if err := r.joined(ctx).
		Where("purchases.supplier_id = ?", supplierID).
		Order("purchases.purchase_date DESC").
		Order("purchases.id DESC").
		Limit(limit).
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// CountBySupplier counts purchases from a supplier
func (r *GormPurchaseRepository) CountBySupplier(ctx context.Context, supplierID uint64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&trade.Purchase{}).
		Where("supplier_id = ?", supplierID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByInvoiceNumber checks invoice number uniqueness
func (r *GormPurchaseRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&trade.Purchase{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a purchase and its items
func (r *GormPurchaseRepository) Create(ctx context.Context, purchase *trade.Purchase) error {
	err := r.db.WithContext(ctx).Create(purchase).Error
	return writeError(err, "Invoice number "+purchase.InvoiceNumber+" already exists")
}

func (r *GormPurchaseRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if supplierID, ok := filter.Filters["supplier_id"]; ok && supplierID != nil {
		query = query.Where("purchases.supplier_id = ?", supplierID)
	}
	if status, ok := filter.Filters["payment_status"]; ok && status != nil {
		query = query.Where("purchases.payment_status = ?", status)
	}
	if filter.Search != "" {
		query = query.Where(`LOWER(purchases.invoice_number) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}
	return query
}

// attachItems loads the items of every purchase in one query
func (r *GormPurchaseRepository) attachItems(ctx context.Context, purchases []trade.Purchase) error {
	if len(purchases) == 0 {
		return nil
	}
	ids := make([]uint64, len(purchases))
	for i := range purchases {
		ids[i] = purchases[i].ID
	}

	var items []trade.PurchaseItem
	if err := r.db.WithContext(ctx).
		Table("purchase_items").
		Select("purchase_items.*, medicines.name AS medicine_name").
		Joins("LEFT JOIN medicines ON medicines.id = purchase_items.medicine_id").
		Where("purchase_items.purchase_id IN ?", ids).
		Order("purchase_items.id ASC").
		Find(&items).Error; err != nil {
		return err
	}

	byPurchase := make(map[uint64][]trade.PurchaseItem, len(purchases))
	for _, item := range items {
		byPurchase[item.PurchaseID] = append(byPurchase[item.PurchaseID], item)
	}
	for i := range purchases {
		purchases[i].Items = byPurchase[purchases[i].ID]
	}
	return nil
}

// Ensure GormPurchaseRepository implements PurchaseRepository
var _ trade.PurchaseRepository = (*GormPurchaseRepository)(nil)
