package tax

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/tax"
	"github.com/google/uuid"
)

// UpdateGSTSettingsRequest creates or replaces the tenant's GST profile
type UpdateGSTSettingsRequest struct {
	GSTIN       string `json:"gstin" binding:"max=15"`
	LegalName   string `json:"legal_name" binding:"required,min=1,max=200"`
	TradeName   string `json:"trade_name" binding:"max=200"`
	Address     string `json:"address" binding:"max=500"`
	StateCode   string `json:"state_code" binding:"omitempty,len=2"`
	IsComposite bool   `json:"is_composite"`
}

// GSTSettingsResponse represents the GST profile in API responses
type GSTSettingsResponse struct {
	GSTIN       string    `json:"gstin"`
	LegalName   string    `json:"legal_name"`
	TradeName   string    `json:"trade_name"`
	Address     string    `json:"address"`
	StateCode   string    `json:"state_code"`
	IsComposite bool      `json:"is_composite"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GSTSettingsService handles the tenant GST profile
type GSTSettingsService struct {
	settingsRepo tax.GSTSettingsRepository
}

// NewGSTSettingsService creates a new GSTSettingsService
func NewGSTSettingsService(settingsRepo tax.GSTSettingsRepository) *GSTSettingsService {
	return &GSTSettingsService{settingsRepo: settingsRepo}
}

// Get retrieves the tenant's GST profile
func (s *GSTSettingsService) Get(ctx context.Context, tenantID uuid.UUID) (*GSTSettingsResponse, error) {
	settings, err := s.settingsRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return toResponse(settings), nil
}

// Upsert creates or replaces the tenant's GST profile
func (s *GSTSettingsService) Upsert(ctx context.Context, tenantID uuid.UUID, req UpdateGSTSettingsRequest) (*GSTSettingsResponse, error) {
	settings, err := s.settingsRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		if !shared.IsNotFound(err) {
			return nil, err
		}
		settings, err = tax.NewGSTSettings(tenantID, req.GSTIN, req.LegalName)
		if err != nil {
			return nil, err
		}
	}

	if err := settings.Update(req.GSTIN, req.LegalName, req.TradeName, req.Address, req.StateCode); err != nil {
		return nil, err
	}
	settings.SetComposite(req.IsComposite)

	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return toResponse(settings), nil
}

func toResponse(s *tax.GSTSettings) *GSTSettingsResponse {
	return &GSTSettingsResponse{
		GSTIN:       s.GSTIN,
		LegalName:   s.LegalName,
		TradeName:   s.TradeName,
		Address:     s.Address,
		StateCode:   s.StateCode,
		IsComposite: s.IsComposite,
		UpdatedAt:   s.UpdatedAt,
	}
}
