package catalog

import (
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var decimalHundred = decimal.NewFromInt(100)

// ServiceType is a catalog entry describing a billable service: its SAC
// code, default rate and default GST rate. Invoice lines reference a
// service type but snapshot their own rate and tax rate at creation.
type ServiceType struct {
	shared.TenantEntity
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SACCode     string          `json:"sac_code"`
	DefaultRate decimal.Decimal `json:"default_rate"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	IsActive    bool            `json:"is_active"`
}

// NewServiceType creates an active service type.
func NewServiceType(tenantID uuid.UUID, name string, defaultRate, gstRate decimal.Decimal) (*ServiceType, error) {
	if err := validateServiceName(name); err != nil {
		return nil, err
	}
	if defaultRate.IsNegative() {
		return nil, shared.NewValidationError("default rate cannot be negative")
	}
	if gstRate.IsNegative() || gstRate.GreaterThan(decimalHundred) {
		return nil, shared.NewValidationError("gst rate must be between 0 and 100")
	}

	return &ServiceType{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         strings.TrimSpace(name),
		DefaultRate:  defaultRate,
		GSTRate:      gstRate,
		IsActive:     true,
	}, nil
}

// Update updates name, description and SAC code
func (s *ServiceType) Update(name, description, sacCode string) error {
	if err := validateServiceName(name); err != nil {
		return err
	}
	if len(description) > 500 {
		return shared.NewValidationError("description cannot exceed 500 characters")
	}
	if len(sacCode) > 10 {
		return shared.NewValidationError("SAC code cannot exceed 10 characters")
	}

	s.Name = strings.TrimSpace(name)
	s.Description = description
	s.SACCode = sacCode
	s.UpdatedAt = time.Now()
	return nil
}

// SetRates sets the default rate and GST rate used to prefill invoice lines
func (s *ServiceType) SetRates(defaultRate, gstRate decimal.Decimal) error {
	if defaultRate.IsNegative() {
		return shared.NewValidationError("default rate cannot be negative")
	}
	if gstRate.IsNegative() || gstRate.GreaterThan(decimalHundred) {
		return shared.NewValidationError("gst rate must be between 0 and 100")
	}

	s.DefaultRate = defaultRate
	s.GSTRate = gstRate
	s.UpdatedAt = time.Now()
	return nil
}

// Activate marks the service type available for new invoice lines
func (s *ServiceType) Activate() {
	s.IsActive = true
	s.UpdatedAt = time.Now()
}

// Deactivate retires the service type without touching historical invoices
func (s *ServiceType) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
}

func validateServiceName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("service name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("service name cannot exceed 200 characters")
	}
	return nil
}
