package partner

import (
	"regexp"
	"strings"

	"github.com/medstore/backend/internal/domain/shared"
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Supplier provides medicines and is the counterparty of every purchase
type Supplier struct {
	shared.BaseEntity
	Name      string `gorm:"type:varchar(100);not null;index"`
	Contact   string `gorm:"type:varchar(100);not null"`
	Email     string `gorm:"type:varchar(120)"`
	Phone     string `gorm:"type:varchar(20)"`
	Address   string `gorm:"type:text"`
	GSTNumber string `gorm:"column:gst_number;type:varchar(50)"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierDetails carries the editable fields of a supplier
type SupplierDetails struct {
	Name      string
	Contact   string
	Email     string
	Phone     string
	Address   string
	GSTNumber string
}

// NewSupplier creates a new supplier with required fields
func NewSupplier(details SupplierDetails) (*Supplier, error) {
	if err := details.validate(); err != nil {
		return nil, err
	}
	s := &Supplier{BaseEntity: shared.NewBaseEntity()}
	s.apply(details)
	return s, nil
}

// Update replaces the supplier's details
func (s *Supplier) Update(details SupplierDetails) error {
	if err := details.validate(); err != nil {
		return err
	}
	s.apply(details)
	s.Touch()
	return nil
}

func (s *Supplier) apply(d SupplierDetails) {
	s.Name = strings.TrimSpace(d.Name)
	s.Contact = strings.TrimSpace(d.Contact)
	s.Email = strings.TrimSpace(d.Email)
	s.Phone = strings.TrimSpace(d.Phone)
	s.Address = strings.TrimSpace(d.Address)
	s.GSTNumber = strings.ToUpper(strings.TrimSpace(d.GSTNumber))
}

func (d SupplierDetails) validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 100 characters")
	}
	contact := strings.TrimSpace(d.Contact)
	if contact == "" {
		return shared.NewDomainError("INVALID_CONTACT", "Supplier contact cannot be empty")
	}
	if len(contact) > 100 {
		return shared.NewDomainError("INVALID_CONTACT", "Supplier contact cannot exceed 100 characters")
	}
	if email := strings.TrimSpace(d.Email); email != "" {
		if len(email) > 120 {
			return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 120 characters")
		}
		if !emailPattern.MatchString(email) {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}
	if phone := strings.TrimSpace(d.Phone); phone != "" {
		if len(phone) > 20 {
			return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 20 characters")
		}
		if !phonePattern.MatchString(phone) {
			return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
		}
	}
	if len(strings.TrimSpace(d.GSTNumber)) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "GST number cannot exceed 50 characters")
	}
	return nil
}
