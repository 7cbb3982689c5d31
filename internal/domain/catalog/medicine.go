package catalog

import (
	"strings"
	"time"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the quantity below which a medicine counts as low stock
const LowStockThreshold = 10

// Medicine is a stocked item. Quantity is a running total maintained by the
// purchase and sale ledgers; metadata edits never change it.
type Medicine struct {
	shared.BaseEntity
	Name        string          `gorm:"type:varchar(100);not null;index"`
	Description string          `gorm:"type:text"`
	Quantity    int             `gorm:"not null;default:0;check:chk_medicines_quantity,quantity >= 0"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SupplierID  *uint64         `gorm:"index"`
	BatchNumber string          `gorm:"type:varchar(50)"`
	ExpiryDate  time.Time       `gorm:"type:date;not null"`

	// SupplierName is filled by queries that join suppliers
	SupplierName string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (Medicine) TableName() string {
	return "medicines"
}

// MedicineDetails carries the editable metadata of a medicine
type MedicineDetails struct {
	Name        string
	Description string
	Price       decimal.Decimal
	SupplierID  *uint64
	BatchNumber string
	ExpiryDate  time.Time
}

// NewMedicine creates a medicine with zero stock
func NewMedicine(details MedicineDetails) (*Medicine, error) {
	if err := details.validate(); err != nil {
		return nil, err
	}
	m := &Medicine{
		BaseEntity: shared.NewBaseEntity(),
		Quantity:   0,
	}
	m.apply(details)
	return m, nil
}

// Update replaces the metadata. Quantity is left untouched.
func (m *Medicine) Update(details MedicineDetails) error {
	if err := details.validate(); err != nil {
		return err
	}
	m.apply(details)
	m.Touch()
	return nil
}

// IsLowStock reports whether quantity is under LowStockThreshold
func (m *Medicine) IsLowStock() bool {
	return m.Quantity < LowStockThreshold
}

// HasStock reports whether qty units can be taken
func (m *Medicine) HasStock(qty int) bool {
	return qty > 0 && m.Quantity >= qty
}

func (m *Medicine) apply(d MedicineDetails) {
	m.Name = strings.TrimSpace(d.Name)
	m.Description = strings.TrimSpace(d.Description)
	m.Price = d.Price
	m.SupplierID = d.SupplierID
	m.BatchNumber = strings.TrimSpace(d.BatchNumber)
	m.ExpiryDate = shared.StartOfDay(d.ExpiryDate)
}

func (d MedicineDetails) validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewValidationError("Medicine name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewValidationError("Medicine name cannot exceed 100 characters")
	}
	if !d.Price.IsPositive() {
		return shared.NewValidationError("Price must be greater than zero")
	}
	if d.ExpiryDate.IsZero() {
		return shared.NewValidationError("Expiry date is required")
	}
	if len(strings.TrimSpace(d.BatchNumber)) > 50 {
		return shared.NewValidationError("Batch number cannot exceed 50 characters")
	}
	if d.SupplierID != nil && *d.SupplierID == 0 {
		return shared.NewValidationError("Supplier id must be positive")
	}
	return nil
}
