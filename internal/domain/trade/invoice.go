package trade

import (
	"fmt"
	"time"
)

const (
	saleInvoicePrefix    = "INV"
	openingInvoicePrefix = "INIT"
	invoiceDateLayout    = "20060102"
)

// SaleInvoicePrefix returns the per-day sequence key, e.g. INV-20261017
func SaleInvoicePrefix(day time.Time) string {
	return fmt.Sprintf("%s-%s", saleInvoicePrefix, day.UTC().Format(invoiceDateLayout))
}

// FormatSaleInvoiceNumber renders INV-{YYYYMMDD}-{seq:04d}
func FormatSaleInvoiceNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%04d", SaleInvoicePrefix(day), seq)
}

// OpeningStockInvoiceNumber renders INIT-{medicineID}-{YYYYMMDD}
func OpeningStockInvoiceNumber(medicineID uint64, day time.Time) string {
	return fmt.Sprintf("%s-%d-%s", openingInvoicePrefix, medicineID, day.UTC().Format(invoiceDateLayout))
}

// InvoiceSequence is the last number handed out for a prefix
type InvoiceSequence struct {
	Prefix    string `gorm:"type:varchar(32);primaryKey"`
	LastValue int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}
