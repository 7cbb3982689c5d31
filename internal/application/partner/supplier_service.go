package partner

import (
	"context"

	"github.com/medstore/backend/internal/domain/catalog"
	"github.com/medstore/backend/internal/domain/partner"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
)

// RecentPurchaseLimit is how many purchases the supplier detail view shows
const RecentPurchaseLimit = 5

// Conflict messages returned by Delete
const (
	msgSupplierHasMedicines = "Cannot delete supplier with associated medicines. Please reassign or delete the medicines first."
	msgSupplierHasPurchases = "Cannot delete supplier with recorded purchases."
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	medicineRepo catalog.MedicineRepository
	purchaseRepo trade.PurchaseRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(
	supplierRepo partner.SupplierRepository,
	medicineRepo catalog.MedicineRepository,
	purchaseRepo trade.PurchaseRepository,
) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		medicineRepo: medicineRepo,
		purchaseRepo: purchaseRepo,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(toDetails(req))
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Update replaces a supplier's details
func (s *SupplierService) Update(ctx context.Context, id uint64, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(toDetails(req)); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier with its medicines and latest purchases
func (s *SupplierService) GetByID(ctx context.Context, id uint64) (*SupplierDetailResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	medicines, err := s.medicineRepo.FindBySupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchaseRepo.FindRecentBySupplier(ctx, id, RecentPurchaseLimit)
	if err != nil {
		return nil, err
	}
	return &SupplierDetailResponse{
		SupplierResponse: ToSupplierResponse(supplier),
		Medicines:        toSupplierMedicines(medicines),
		RecentPurchases:  toSupplierPurchases(purchases),
	}, nil
}

// List lists suppliers by name
func (s *SupplierService) List(ctx context.Context, filter SupplierListFilter) ([]SupplierResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	domainFilter.Normalize()

	suppliers, err := s.supplierRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSupplierResponses(suppliers), total, nil
}

// Delete removes a supplier no medicine or purchase refers to
func (s *SupplierService) Delete(ctx context.Context, id uint64) error {
	exists, err := s.supplierRepo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewNotFoundError("Supplier", id)
	}

	medicines, err := s.medicineRepo.CountBySupplier(ctx, id)
	if err != nil {
		return err
	}
	if medicines > 0 {
		return shared.NewConflictError(msgSupplierHasMedicines)
	}

	purchases, err := s.purchaseRepo.CountBySupplier(ctx, id)
	if err != nil {
		return err
	}
	if purchases > 0 {
		return shared.NewConflictError(msgSupplierHasPurchases)
	}

	return s.supplierRepo.Delete(ctx, id)
}

func toDetails(req SupplierRequest) partner.SupplierDetails {
	return partner.SupplierDetails{
		Name:      req.Name,
		Contact:   req.Contact,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		GSTNumber: req.GSTNumber,
	}
}

// SeedSampleSupplier creates a placeholder supplier when none exist so a fresh
// install can record opening stock right away. It reports whether one was created.
func (s *SupplierService) SeedSampleSupplier(ctx context.Context) (bool, error) {
	total, err := s.supplierRepo.Count(ctx, shared.Filter{})
	if err != nil {
		return false, err
	}
	if total > 0 {
		return false, nil
	}
	if _, err := s.Create(ctx, SampleSupplier()); err != nil {
		return false, err
	}
	return true, nil
}

// SampleSupplier is the supplier created on first start
func SampleSupplier() SupplierRequest {
	return SupplierRequest{
		Name:      "Sample Supplier",
		Contact:   "John Doe",
		Email:     "supplier@example.com",
		Phone:     "+1234567890",
		Address:   "123 Supplier St, City, Country",
		GSTNumber: "22AAAAA0000A1Z5",
	}
}
