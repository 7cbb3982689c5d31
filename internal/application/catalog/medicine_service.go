package catalog

import (
	"context"
	"time"

	apptrade "github.com/medstore/backend/internal/application/trade"
	"github.com/medstore/backend/internal/domain/catalog"
	"github.com/medstore/backend/internal/domain/partner"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MedicineService handles medicine catalog operations
type MedicineService struct {
	txScope        apptrade.TransactionScope
	medicineRepo   catalog.MedicineRepository
	supplierRepo   partner.SupplierRepository
	purchaseLedger *apptrade.PurchaseLedger
	logger         *zap.Logger
	now            func() time.Time
}

// NewMedicineService creates a new MedicineService
func NewMedicineService(
	txScope apptrade.TransactionScope,
	medicineRepo catalog.MedicineRepository,
	supplierRepo partner.SupplierRepository,
	purchaseLedger *apptrade.PurchaseLedger,
) *MedicineService {
	return &MedicineService{
		txScope:        txScope,
		medicineRepo:   medicineRepo,
		supplierRepo:   supplierRepo,
		purchaseLedger: purchaseLedger,
		logger:         zap.NewNop(),
		now:            time.Now,
	}
}

// SetLogger sets the logger
func (s *MedicineService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// AddMedicine creates a medicine. A positive opening quantity is recorded as a
// paid purchase from the medicine's supplier in the same transaction.
func (s *MedicineService) AddMedicine(ctx context.Context, req AddMedicineRequest) (*MedicineResponse, error) {
	if req.Quantity < 0 {
		return nil, shared.NewValidationError("Quantity cannot be negative")
	}
	if req.Quantity > 0 && req.SupplierID == nil {
		return nil, shared.NewValidationError("A supplier is required to record opening stock")
	}

	details, err := toDetails(req.Name, req.Description, req.Price, req.SupplierID, req.ExpiryDate, req.BatchNumber)
	if err != nil {
		return nil, err
	}
	medicine, err := catalog.NewMedicine(details)
	if err != nil {
		return nil, err
	}

	var opening *trade.Purchase
	err = s.txScope.Execute(ctx, func(repos apptrade.TransactionalRepositories) error {
		if medicine.SupplierID != nil {
			supplier, err := repos.SupplierRepo().FindByID(ctx, *medicine.SupplierID)
			if err != nil {
				return err
			}
			medicine.SupplierName = supplier.Name
		}

		if err := repos.MedicineRepo().Save(ctx, medicine); err != nil {
			return err
		}
		if req.Quantity == 0 {
			return nil
		}

		purchase, err := trade.NewPurchase(
			*medicine.SupplierID,
			trade.OpeningStockInvoiceNumber(medicine.ID, s.now()),
			trade.PaymentStatusPaid,
		)
		if err != nil {
			return err
		}
		expiry := medicine.ExpiryDate
		if err := purchase.AddItem(medicine.ID, medicine.BatchNumber, req.Quantity, medicine.Price, &expiry); err != nil {
			return err
		}
		if err := s.purchaseLedger.RecordPurchaseTx(ctx, repos, purchase); err != nil {
			return err
		}
		opening = purchase
		return nil
	})
	if err != nil {
		return nil, err
	}
	medicine.Quantity = req.Quantity
	if opening != nil {
		s.purchaseLedger.PurchaseCommitted(ctx, opening)
	}

	s.logger.Info("medicine added",
		zap.Uint64("medicine_id", medicine.ID),
		zap.String("name", medicine.Name),
		zap.Int("opening_quantity", req.Quantity),
	)

	response := ToMedicineResponse(medicine)
	return &response, nil
}

// EditMedicine replaces a medicine's metadata. Quantity is left untouched.
func (s *MedicineService) EditMedicine(ctx context.Context, id uint64, req UpdateMedicineRequest) (*MedicineResponse, error) {
	medicine, err := s.medicineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := toDetails(req.Name, req.Description, req.Price, req.SupplierID, req.ExpiryDate, req.BatchNumber)
	if err != nil {
		return nil, err
	}
	if details.SupplierID != nil {
		supplier, err := s.supplierRepo.FindByID(ctx, *details.SupplierID)
		if err != nil {
			return nil, err
		}
		medicine.SupplierName = supplier.Name
	} else {
		medicine.SupplierName = ""
	}

	if err := medicine.Update(details); err != nil {
		return nil, err
	}
	if err := s.medicineRepo.Save(ctx, medicine); err != nil {
		return nil, err
	}

	response := ToMedicineResponse(medicine)
	return &response, nil
}

// DeleteMedicine removes a medicine that has never been bought or sold
func (s *MedicineService) DeleteMedicine(ctx context.Context, id uint64) error {
	if _, err := s.medicineRepo.FindByID(ctx, id); err != nil {
		return err
	}

	hasHistory, err := s.medicineRepo.HasLedgerHistory(ctx, id)
	if err != nil {
		return err
	}
	if hasHistory {
		return shared.NewConflictError("Cannot delete medicine with purchase or sale history.")
	}

	return s.medicineRepo.Delete(ctx, id)
}

// GetMedicine retrieves a medicine with its supplier name
func (s *MedicineService) GetMedicine(ctx context.Context, id uint64) (*MedicineResponse, error) {
	medicine, err := s.medicineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToMedicineResponse(medicine)
	return &response, nil
}

// ListMedicines lists medicines by name. The search term matches name or
// description, or the exact id when it is numeric.
func (s *MedicineService) ListMedicines(ctx context.Context, filter MedicineListFilter) ([]MedicineResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	domainFilter.Normalize()

	medicines, err := s.medicineRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.medicineRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToMedicineResponses(medicines), total, nil
}

func toDetails(name, description string, price decimal.Decimal, supplierID *uint64, expiry, batch string) (catalog.MedicineDetails, error) {
	expiryDate, err := shared.ParseDate("Expiry date", expiry)
	if err != nil {
		return catalog.MedicineDetails{}, err
	}
	return catalog.MedicineDetails{
		Name:        name,
		Description: description,
		Price:       price,
		SupplierID:  supplierID,
		BatchNumber: batch,
		ExpiryDate:  expiryDate,
	}, nil
}
