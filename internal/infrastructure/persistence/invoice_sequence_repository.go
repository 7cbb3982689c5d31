package persistence

import (
	"context"
	"strings"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceSequenceRepository implements InvoiceSequenceRepository with an
// upsert on invoice_sequences. The updated row stays locked until the
// surrounding transaction ends, so concurrent sales on one prefix serialize.
type GormInvoiceSequenceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceSequenceRepository creates a new GormInvoiceSequenceRepository
func NewGormInvoiceSequenceRepository(db *gorm.DB) *GormInvoiceSequenceRepository {
	return &GormInvoiceSequenceRepository{db: db}
}

// Next increments the counter for prefix and returns the new value
func (r *GormInvoiceSequenceRepository) Next(ctx context.Context, prefix string) (int64, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return 0, shared.NewValidationError("Invoice prefix is required")
	}

	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "prefix"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_value": gorm.Expr("invoice_sequences.last_value + 1"),
		}),
	}).Create(&trade.InvoiceSequence{Prefix: prefix, LastValue: 1}).Error
	if err != nil {
		return 0, err
	}

	var seq trade.InvoiceSequence
	if err := db.Where("prefix = ?", prefix).Take(&seq).Error; err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}

// Ensure GormInvoiceSequenceRepository implements InvoiceSequenceRepository
var _ trade.InvoiceSequenceRepository = (*GormInvoiceSequenceRepository)(nil)
