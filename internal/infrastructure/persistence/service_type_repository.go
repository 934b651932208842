package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/billing/backend/internal/domain/catalog"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormServiceTypeRepository implements ServiceTypeRepository using GORM
type GormServiceTypeRepository struct {
	db *gorm.DB
}

// NewGormServiceTypeRepository creates a new GormServiceTypeRepository
func NewGormServiceTypeRepository(db *gorm.DB) *GormServiceTypeRepository {
	return &GormServiceTypeRepository{db: db}
}

// Create persists a new service type
func (r *GormServiceTypeRepository) Create(ctx context.Context, serviceType *catalog.ServiceType) error {
	model := models.ServiceTypeModelFromDomain(serviceType)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update saves a modified service type
func (r *GormServiceTypeRepository) Update(ctx context.Context, serviceType *catalog.ServiceType) error {
	model := models.ServiceTypeModelFromDomain(serviceType)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a service type within a tenant
func (r *GormServiceTypeRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ServiceTypeModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByIDForTenant finds a service type by ID within a tenant
func (r *GormServiceTypeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.ServiceType, error) {
	var model models.ServiceTypeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns service types matching the filter with the total row count
func (r *GormServiceTypeRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, activeOnly bool) ([]catalog.ServiceType, int64, error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.ServiceTypeModel{}).Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR sac_code ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		orderDir = "DESC"
	}

	var serviceModels []models.ServiceTypeModel
	if err := query.
		Order("name " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&serviceModels).Error; err != nil {
		return nil, 0, err
	}

	serviceTypes := make([]catalog.ServiceType, len(serviceModels))
	for i, m := range serviceModels {
		serviceTypes[i] = *m.ToDomain()
	}
	return serviceTypes, total, nil
}

// ExistsByName checks whether another service type with the given name exists
// in the tenant. The match is case insensitive.
func (r *GormServiceTypeRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ServiceTypeModel{}).
		Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, strings.TrimSpace(name))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountLineItemReferences reports how many invoice lines snapshot this service type
func (r *GormServiceTypeRepository) CountLineItemReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceLineItemModel{}).
		Where("service_type_id = ?", id).
		Count(&count).Error
	return count, err
}

// Ensure GormServiceTypeRepository implements ServiceTypeRepository
var _ catalog.ServiceTypeRepository = (*GormServiceTypeRepository)(nil)
