package catalog

import (
	"context"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ServiceTypeRepository defines persistence operations for service types
type ServiceTypeRepository interface {
	Create(ctx context.Context, serviceType *ServiceType) error
	Update(ctx context.Context, serviceType *ServiceType) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ServiceType, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, activeOnly bool) ([]ServiceType, int64, error)
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	// CountLineItemReferences reports how many invoice lines snapshot this
	// service type, used for the delete guard.
	CountLineItemReferences(ctx context.Context, id uuid.UUID) (int64, error)
}
