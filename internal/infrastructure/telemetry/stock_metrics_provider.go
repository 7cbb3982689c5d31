package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormLowStockCounter implements LowStockCounter against the medicines table.
type GormLowStockCounter struct {
	db        *gorm.DB
	threshold int
}

// NewGormLowStockCounter counts medicines whose quantity is below threshold.
func NewGormLowStockCounter(db *gorm.DB, threshold int) *GormLowStockCounter {
	return &GormLowStockCounter{db: db, threshold: threshold}
}

// CountLowStock returns the number of low-stock medicines.
func (p *GormLowStockCounter) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("medicines").
		Where("quantity < ?", p.threshold).
		Count(&count).Error
	return count, err
}
