package trade

import (
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SaleTotals is the price breakdown of a sale.
// Discount applies to the subtotal, tax applies to the discounted base.
type SaleTotals struct {
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	TaxableBase decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// ValidatePercents checks discount and tax rates
func ValidatePercents(discountPercent, taxPercent decimal.Decimal) error {
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 100 percent")
	}
	if taxPercent.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Tax cannot be negative")
	}
	return nil
}

// ComputeSaleTotals derives discount, tax and total from a subtotal and two percentages
func ComputeSaleTotals(subtotal, discountPercent, taxPercent decimal.Decimal) SaleTotals {
	discount := subtotal.Mul(discountPercent).Div(hundred)
	base := subtotal.Sub(discount)
	tax := base.Mul(taxPercent).Div(hundred)
	return SaleTotals{
		Subtotal:    subtotal,
		Discount:    discount,
		TaxableBase: base,
		Tax:         tax,
		Total:       base.Add(tax),
	}
}
