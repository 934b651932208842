package persistence

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/tax"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGSTSettingsRepository implements GSTSettingsRepository using GORM
type GormGSTSettingsRepository struct {
	db *gorm.DB
}

// NewGormGSTSettingsRepository creates a new GormGSTSettingsRepository
func NewGormGSTSettingsRepository(db *gorm.DB) *GormGSTSettingsRepository {
	return &GormGSTSettingsRepository{db: db}
}

// Upsert creates or replaces the tenant's GST profile. One row per tenant.
func (r *GormGSTSettingsRepository) Upsert(ctx context.Context, settings *tax.GSTSettings) error {
	model := models.GSTSettingsModelFromDomain(settings)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"gstin", "legal_name", "trade_name", "address", "state_code", "is_composite", "updated_at",
		}),
	}).Create(model).Error
}

// FindByTenant retrieves the tenant's GST profile
func (r *GormGSTSettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*tax.GSTSettings, error) {
	var model models.GSTSettingsModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormGSTSettingsRepository implements GSTSettingsRepository
var _ tax.GSTSettingsRepository = (*GormGSTSettingsRepository)(nil)
