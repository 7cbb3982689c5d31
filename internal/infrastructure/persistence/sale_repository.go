package persistence

import (
	"context"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID loads a sale with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uint64) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Sale", id)
	}
	sales := []trade.Sale{sale}
	if err := r.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

// FindAll lists sales newest first
func (r *GormSaleRepository) FindAll(ctx context.Context, filter trade.SaleFilter) ([]trade.Sale, error) {
	var sales []trade.Sale
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.Sale{}), filter).
		Order(orderClause("sales", filter.Filter, SaleSortFields, "sale_date", "DESC")).
		Order("sales.id DESC")
	if err := paginate(query, filter.Filter).Find(&sales).Error; err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter trade.SaleFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.Sale{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a sale and its items
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	err := r.db.WithContext(ctx).Create(sale).Error
	return writeError(err, "Invoice number "+sale.InvoiceNumber+" already exists")
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter trade.SaleFilter) *gorm.DB {
	if filter.StartDate != nil {
		query = query.Where("sales.sale_date >= ?", shared.StartOfDay(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("sales.sale_date < ?", shared.StartOfDay(*filter.EndDate).AddDate(0, 0, 1))
	}
	if filter.Customer != "" {
		query = query.Where(`LOWER(sales.customer_name) LIKE ? ESCAPE '\'`, likePattern(filter.Customer))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			`(LOWER(sales.invoice_number) LIKE ? ESCAPE '\' OR LOWER(sales.customer_name) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}
	return query
}

// attachItems loads the items of every sale in one query, with medicine names
func (r *GormSaleRepository) attachItems(ctx context.Context, sales []trade.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]uint64, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
	}

	var items []trade.SaleItem
	if err := r.db.WithContext(ctx).
		Table("sale_items").
		Select("sale_items.*, medicines.name AS medicine_name").
		Joins("LEFT JOIN medicines ON medicines.id = sale_items.medicine_id").
		Where("sale_items.sale_id IN ?", ids).
		Order("sale_items.id ASC").
		Find(&items).Error; err != nil {
		return err
	}

	bySale := make(map[uint64][]trade.SaleItem, len(sales))
	for _, item := range items {
		bySale[item.SaleID] = append(bySale[item.SaleID], item)
	}
	for i := range sales {
		sales[i].Items = bySale[sales[i].ID]
	}
	return nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
