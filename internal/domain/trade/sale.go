package trade

import (
	"strings"
	"time"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultPaymentMethod is used when a sale does not name one
const DefaultPaymentMethod = "Cash"

// SaleItem is one stock-decrease event
type SaleItem struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	SaleID      uint64          `gorm:"not null;index"`
	MedicineID  uint64          `gorm:"not null;index"`
	BatchNumber string          `gorm:"type:varchar(50)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	// MedicineName is filled by queries that join medicines
	MedicineName string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// Sale records medicines handed to a customer
type Sale struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	InvoiceNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerName    string          `gorm:"type:varchar(100)"`
	CustomerContact string          `gorm:"type:varchar(20)"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null;default:'Cash'"`
	SaleDate        time.Time       `gorm:"not null;index"`
	Items           []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates an empty sale dated now. The invoice number is assigned when
// the sale is recorded.
func NewSale(customerName, customerContact, paymentMethod string) (*Sale, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if len(customerName) > 100 {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot exceed 100 characters")
	}
	customerContact = strings.TrimSpace(customerContact)
	if len(customerContact) > 20 {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Customer contact cannot exceed 20 characters")
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}
	if len(paymentMethod) > 20 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method cannot exceed 20 characters")
	}
	return &Sale{
		CustomerName:    customerName,
		CustomerContact: customerContact,
		PaymentMethod:   paymentMethod,
		TotalAmount:     decimal.Zero,
		Discount:        decimal.Zero,
		TaxAmount:       decimal.Zero,
		SaleDate:        time.Now().UTC(),
		Items:           make([]SaleItem, 0),
	}, nil
}

// AddItem appends a line. The batch number is the medicine's at the time of sale.
func (s *Sale) AddItem(medicineID uint64, batchNumber string, quantity int, unitPrice decimal.Decimal) error {
	if medicineID == 0 {
		return shared.NewValidationError("Medicine is required")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	s.Items = append(s.Items, SaleItem{
		MedicineID:  medicineID,
		BatchNumber: batchNumber,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	})
	return nil
}

// Subtotal sums the line totals
func (s *Sale) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Items {
		total = total.Add(s.Items[i].TotalPrice)
	}
	return total
}

// ApplyPricing computes discount, tax and total from the current lines
func (s *Sale) ApplyPricing(discountPercent, taxPercent decimal.Decimal) (SaleTotals, error) {
	if len(s.Items) == 0 {
		return SaleTotals{}, shared.NewValidationError("Sale must contain at least one item")
	}
	if err := ValidatePercents(discountPercent, taxPercent); err != nil {
		return SaleTotals{}, err
	}
	totals := ComputeSaleTotals(s.Subtotal(), discountPercent, taxPercent)
	s.Discount = totals.Discount
	s.TaxAmount = totals.Tax
	s.TotalAmount = totals.Total
	return totals, nil
}

// AssignInvoiceNumber sets the invoice number once
func (s *Sale) AssignInvoiceNumber(number string) error {
	if s.InvoiceNumber != "" {
		return shared.NewDomainError("INVALID_STATE", "Invoice number already assigned")
	}
	s.InvoiceNumber = number
	return nil
}

// ItemCount returns the number of lines
func (s *Sale) ItemCount() int {
	return len(s.Items)
}
