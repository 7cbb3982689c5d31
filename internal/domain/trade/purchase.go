package trade

import (
	"strings"
	"time"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the settlement state of a purchase
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid:
		return true
	}
	return false
}

// ParsePaymentStatus maps user input onto a PaymentStatus. Empty input means Pending.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PaymentStatusPending, nil
	}
	for _, st := range []PaymentStatus{PaymentStatusPending, PaymentStatusPaid} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", shared.NewDomainError("INVALID_PAYMENT_STATUS", "Payment status must be Pending or Paid")
}

// PurchaseItem is one stock-increase event
type PurchaseItem struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	PurchaseID  uint64          `gorm:"not null;index"`
	MedicineID  uint64          `gorm:"not null;index"`
	BatchNumber string          `gorm:"type:varchar(50)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpiryDate  *time.Time      `gorm:"type:date"`

	// MedicineName is filled by queries that join medicines
	MedicineName string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// Amount returns quantity times unit price
func (i *PurchaseItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Purchase records stock received from a supplier
type Purchase struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement"`
	SupplierID    uint64          `gorm:"not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PurchaseDate  time.Time       `gorm:"not null;index"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'Pending'"`
	Items         []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`

	// SupplierName is filled by queries that join suppliers
	SupplierName string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// NewPurchase creates an empty purchase dated now
func NewPurchase(supplierID uint64, invoiceNumber string, status PaymentStatus) (*Purchase, error) {
	if supplierID == 0 {
		return nil, shared.NewValidationError("Supplier is required")
	}
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_STATUS", "Payment status must be Pending or Paid")
	}
	return &Purchase{
		SupplierID:    supplierID,
		InvoiceNumber: invoiceNumber,
		TotalAmount:   decimal.Zero,
		PurchaseDate:  time.Now().UTC(),
		PaymentStatus: status,
		Items:         make([]PurchaseItem, 0),
	}, nil
}

// AddItem appends a line and updates the total
func (p *Purchase) AddItem(medicineID uint64, batchNumber string, quantity int, unitPrice decimal.Decimal, expiry *time.Time) error {
	if medicineID == 0 {
		return shared.NewValidationError("Medicine is required")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	p.Items = append(p.Items, PurchaseItem{
		MedicineID:  medicineID,
		BatchNumber: strings.TrimSpace(batchNumber),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		ExpiryDate:  expiry,
	})
	p.recalculateTotal()
	return nil
}

// TotalQuantity sums the quantity of every line
func (p *Purchase) TotalQuantity() int {
	total := 0
	for _, item := range p.Items {
		total += item.Quantity
	}
	return total
}

// Validate checks the purchase is ready to be recorded
func (p *Purchase) Validate() error {
	if len(p.Items) == 0 {
		return shared.NewValidationError("Purchase must contain at least one item")
	}
	return nil
}

func (p *Purchase) recalculateTotal() {
	total := decimal.Zero
	for i := range p.Items {
		total = total.Add(p.Items[i].Amount())
	}
	p.TotalAmount = total
}
