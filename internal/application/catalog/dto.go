package catalog

import (
	"time"

	"github.com/medstore/backend/internal/domain/catalog"
	"github.com/medstore/backend/internal/infrastructure/sheet"
	"github.com/shopspring/decimal"
)

// AddMedicineRequest represents a request to add a medicine. Quantity is the
// opening stock, recorded as a paid purchase from the supplier.
type AddMedicineRequest struct {
	Name        string          `json:"name" form:"name" binding:"required,min=1,max=100"`
	Description string          `json:"description" form:"description"`
	Quantity    int             `json:"quantity" form:"quantity" binding:"min=0"`
	Price       decimal.Decimal `json:"price" form:"price"`
	SupplierID  *uint64         `json:"supplier_id" form:"supplier_id"`
	ExpiryDate  string          `json:"expiry_date" form:"expiry_date" binding:"required"`
	BatchNumber string          `json:"batch_number" form:"batch_number" binding:"max=50"`
}

// UpdateMedicineRequest represents a metadata edit. Stock is never changed here.
type UpdateMedicineRequest struct {
	Name        string          `json:"name" form:"name" binding:"required,min=1,max=100"`
	Description string          `json:"description" form:"description"`
	Price       decimal.Decimal `json:"price" form:"price"`
	SupplierID  *uint64         `json:"supplier_id" form:"supplier_id"`
	ExpiryDate  string          `json:"expiry_date" form:"expiry_date" binding:"required"`
	BatchNumber string          `json:"batch_number" form:"batch_number" binding:"max=50"`
}

// MedicineListFilter represents filter options for the medicine list
type MedicineListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// MedicineResponse represents a medicine in API responses
type MedicineResponse struct {
	ID           uint64          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	SupplierID   *uint64         `json:"supplier_id"`
	SupplierName string          `json:"supplier_name,omitempty"`
	BatchNumber  string          `json:"batch_number"`
	ExpiryDate   string          `json:"expiry_date"`
	IsLowStock   bool            `json:"is_low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToMedicineResponse converts a domain Medicine to MedicineResponse
func ToMedicineResponse(m *catalog.Medicine) MedicineResponse {
	return MedicineResponse{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Quantity:     m.Quantity,
		Price:        m.Price,
		SupplierID:   m.SupplierID,
		SupplierName: m.SupplierName,
		BatchNumber:  m.BatchNumber,
		ExpiryDate:   m.ExpiryDate.Format("2006-01-02"),
		IsLowStock:   m.IsLowStock(),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ToMedicineResponses converts a slice of medicines
func ToMedicineResponses(medicines []catalog.Medicine) []MedicineResponse {
	responses := make([]MedicineResponse, len(medicines))
	for i := range medicines {
		responses[i] = ToMedicineResponse(&medicines[i])
	}
	return responses
}

// ImportResult represents the outcome of a bulk medicine import
type ImportResult struct {
	TotalRows    int              `json:"total_rows"`
	ImportedRows int              `json:"imported_rows"`
	ErrorRows    int              `json:"error_rows"`
	Errors       []sheet.RowError `json:"errors,omitempty"`
	IsTruncated  bool             `json:"is_truncated,omitempty"`
	TotalErrors  int              `json:"total_errors,omitempty"`
}
