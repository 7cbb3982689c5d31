package partner

import (
	"time"

	"github.com/medstore/backend/internal/domain/catalog"
	"github.com/medstore/backend/internal/domain/partner"
	"github.com/medstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SupplierRequest represents a create or update request for a supplier
type SupplierRequest struct {
	Name      string `json:"name" form:"name" binding:"required,min=1,max=100"`
	Contact   string `json:"contact" form:"contact" binding:"required,min=1,max=100"`
	Email     string `json:"email" form:"email" binding:"omitempty,email,max=120"`
	Phone     string `json:"phone" form:"phone" binding:"max=20"`
	Address   string `json:"address" form:"address"`
	GSTNumber string `json:"gst_number" form:"gst_number" binding:"max=50"`
}

// SupplierListFilter represents filter options for the supplier list
type SupplierListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	GSTNumber string    `json:"gst_number,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SupplierMedicine is a medicine listed on the supplier detail page
type SupplierMedicine struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	BatchNumber string          `json:"batch_number"`
}

// SupplierPurchase is a purchase listed on the supplier detail page
type SupplierPurchase struct {
	ID            uint64          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	PaymentStatus string          `json:"payment_status"`
}

// SupplierDetailResponse is a supplier with its medicines and latest purchases
type SupplierDetailResponse struct {
	SupplierResponse
	Medicines       []SupplierMedicine `json:"medicines"`
	RecentPurchases []SupplierPurchase `json:"recent_purchases"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Contact:   s.Contact,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		GSTNumber: s.GSTNumber,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToSupplierResponses converts a slice of suppliers
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i])
	}
	return responses
}

func toSupplierMedicines(medicines []catalog.Medicine) []SupplierMedicine {
	out := make([]SupplierMedicine, len(medicines))
	for i, m := range medicines {
		out[i] = SupplierMedicine{
			ID:          m.ID,
			Name:        m.Name,
			Quantity:    m.Quantity,
			Price:       m.Price,
			BatchNumber: m.BatchNumber,
		}
	}
	return out
}

func toSupplierPurchases(purchases []trade.Purchase) []SupplierPurchase {
	out := make([]SupplierPurchase, len(purchases))
	for i, p := range purchases {
		out[i] = SupplierPurchase{
			ID:            p.ID,
			InvoiceNumber: p.InvoiceNumber,
			TotalAmount:   p.TotalAmount,
			PurchaseDate:  p.PurchaseDate,
			PaymentStatus: string(p.PaymentStatus),
		}
	}
	return out
}
