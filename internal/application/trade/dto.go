package trade

import (
	"time"

	"github.com/medstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Purchase DTOs ====================

// RecordPurchaseRequest represents a request to record stock received from a supplier
type RecordPurchaseRequest struct {
	SupplierID    uint64              `json:"supplier_id" binding:"required"`
	InvoiceNumber string              `json:"invoice_number" binding:"required,max=50"`
	PaymentStatus string              `json:"payment_status" binding:"omitempty,oneof=Pending Paid pending paid"`
	Items         []PurchaseItemInput `json:"items" binding:"required,min=1,dive"`
}

// PurchaseItemInput represents one received line
type PurchaseItemInput struct {
	MedicineID  uint64          `json:"medicine_id" binding:"required"`
	BatchNumber string          `json:"batch_number" binding:"max=50"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ExpiryDate  string          `json:"expiry_date"`
}

// PurchaseListFilter represents filter options for the purchase list
type PurchaseListFilter struct {
	SupplierID *uint64 `form:"supplier_id"`
	Page       int     `form:"page" binding:"min=0"`
	PageSize   int     `form:"page_size" binding:"min=0,max=100"`
}

// PurchaseItemResponse represents a purchase line in API responses
type PurchaseItemResponse struct {
	ID           uint64          `json:"id"`
	MedicineID   uint64          `json:"medicine_id"`
	MedicineName string          `json:"medicine_name,omitempty"`
	BatchNumber  string          `json:"batch_number"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID            uint64                 `json:"id"`
	SupplierID    uint64                 `json:"supplier_id"`
	SupplierName  string                 `json:"supplier_name,omitempty"`
	InvoiceNumber string                 `json:"invoice_number"`
	TotalAmount   decimal.Decimal        `json:"total_amount"`
	TotalQuantity int                    `json:"total_quantity"`
	PurchaseDate  time.Time              `json:"purchase_date"`
	PaymentStatus string                 `json:"payment_status"`
	Items         []PurchaseItemResponse `json:"items,omitempty"`
}

// ToPurchaseResponse converts a domain Purchase to PurchaseResponse
func ToPurchaseResponse(p *trade.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, len(p.Items))
	for i := range p.Items {
		item := &p.Items[i]
		items[i] = PurchaseItemResponse{
			ID:           item.ID,
			MedicineID:   item.MedicineID,
			MedicineName: item.MedicineName,
			BatchNumber:  item.BatchNumber,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Amount:       item.Amount(),
			ExpiryDate:   item.ExpiryDate,
		}
	}
	return PurchaseResponse{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		SupplierName:  p.SupplierName,
		InvoiceNumber: p.InvoiceNumber,
		TotalAmount:   p.TotalAmount,
		TotalQuantity: p.TotalQuantity(),
		PurchaseDate:  p.PurchaseDate,
		PaymentStatus: string(p.PaymentStatus),
		Items:         items,
	}
}

// ToPurchaseResponses converts a slice of purchases
func ToPurchaseResponses(purchases []trade.Purchase) []PurchaseResponse {
	responses := make([]PurchaseResponse, len(purchases))
	for i := range purchases {
		responses[i] = ToPurchaseResponse(&purchases[i])
	}
	return responses
}

// ==================== Sale DTOs ====================

// RecordSaleRequest represents a point-of-sale submission
type RecordSaleRequest struct {
	CustomerName    string          `json:"customer_name" binding:"required,max=100"`
	CustomerContact string          `json:"customer_contact" binding:"max=20"`
	PaymentMethod   string          `json:"payment_method" binding:"max=20"`
	DiscountPercent decimal.Decimal `json:"discount"`
	TaxPercent      decimal.Decimal `json:"tax"`
	Items           []SaleItemInput `json:"items" binding:"required,min=1"`
}

// SaleItemInput represents one sold line. A zero or omitted unit price falls
// back to the medicine's list price; a negative one is rejected.
type SaleItemInput struct {
	MedicineID uint64          `json:"medicine_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"price"`
}

// SaleListFilter represents filter options for the sale list
type SaleListFilter struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Customer  string `form:"customer"`
	Page      int    `form:"page" binding:"min=0"`
	PageSize  int    `form:"page_size" binding:"min=0,max=100"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID           uint64          `json:"id"`
	MedicineID   uint64          `json:"medicine_id"`
	MedicineName string          `json:"medicine_name,omitempty"`
	BatchNumber  string          `json:"batch_number"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID              uint64             `json:"id"`
	InvoiceNumber   string             `json:"invoice_number"`
	CustomerName    string             `json:"customer_name"`
	CustomerContact string             `json:"customer_contact,omitempty"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Discount        decimal.Decimal    `json:"discount"`
	TaxAmount       decimal.Decimal    `json:"tax_amount"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	PaymentMethod   string             `json:"payment_method"`
	SaleDate        time.Time          `json:"sale_date"`
	ItemCount       int                `json:"item_count"`
	Items           []SaleItemResponse `json:"items,omitempty"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i := range s.Items {
		item := &s.Items[i]
		items[i] = SaleItemResponse{
			ID:           item.ID,
			MedicineID:   item.MedicineID,
			MedicineName: item.MedicineName,
			BatchNumber:  item.BatchNumber,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.TotalPrice,
		}
	}
	return SaleResponse{
		ID:              s.ID,
		InvoiceNumber:   s.InvoiceNumber,
		CustomerName:    s.CustomerName,
		CustomerContact: s.CustomerContact,
		Subtotal:        s.Subtotal(),
		Discount:        s.Discount,
		TaxAmount:       s.TaxAmount,
		TotalAmount:     s.TotalAmount,
		PaymentMethod:   s.PaymentMethod,
		SaleDate:        s.SaleDate,
		ItemCount:       s.ItemCount(),
		Items:           items,
	}
}

// ToSaleResponses converts a slice of sales
func ToSaleResponses(sales []trade.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i])
	}
	return responses
}
