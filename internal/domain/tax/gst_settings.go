package tax

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var gstinRegex = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)

// GSTSettings holds a tenant's own GST registration details, printed on
// invoices and credit notes. One row per tenant.
type GSTSettings struct {
	shared.TenantEntity
	GSTIN       string `json:"gstin"`
	LegalName   string `json:"legal_name"`
	TradeName   string `json:"trade_name"`
	Address     string `json:"address"`
	StateCode   string `json:"state_code"`
	IsComposite bool   `json:"is_composite"`
}

// NewGSTSettings creates the tenant's GST profile.
func NewGSTSettings(tenantID uuid.UUID, gstin, legalName string) (*GSTSettings, error) {
	s := &GSTSettings{
		TenantEntity: shared.NewTenantEntity(tenantID),
	}
	if err := s.Update(gstin, legalName, "", "", ""); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the registration details
func (s *GSTSettings) Update(gstin, legalName, tradeName, address, stateCode string) error {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if gstin != "" && !gstinRegex.MatchString(gstin) {
		return shared.NewValidationError("invalid GSTIN format")
	}
	legalName = strings.TrimSpace(legalName)
	if legalName == "" {
		return shared.NewValidationError("legal name cannot be empty")
	}
	if len(legalName) > 200 || len(tradeName) > 200 {
		return shared.NewValidationError("name cannot exceed 200 characters")
	}
	if len(address) > 500 {
		return shared.NewValidationError("address cannot exceed 500 characters")
	}
	if stateCode != "" && len(stateCode) != 2 {
		return shared.NewValidationError("state code must be two digits")
	}

	s.GSTIN = gstin
	s.LegalName = legalName
	s.TradeName = strings.TrimSpace(tradeName)
	s.Address = address
	s.StateCode = stateCode
	s.UpdatedAt = time.Now()
	return nil
}

// SetComposite flags the tenant as a composition-scheme taxpayer
func (s *GSTSettings) SetComposite(composite bool) {
	s.IsComposite = composite
	s.UpdatedAt = time.Now()
}

// GSTSettingsRepository defines persistence operations for GST settings
type GSTSettingsRepository interface {
	// Upsert creates or replaces the tenant's single settings row.
	Upsert(ctx context.Context, settings *GSTSettings) error
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*GSTSettings, error)
}
