package catalog

import (
	"context"

	"github.com/billing/backend/internal/domain/catalog"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ServiceTypeService handles the billable service catalog
type ServiceTypeService struct {
	serviceTypeRepo catalog.ServiceTypeRepository
}

// NewServiceTypeService creates a new ServiceTypeService
func NewServiceTypeService(serviceTypeRepo catalog.ServiceTypeRepository) *ServiceTypeService {
	return &ServiceTypeService{serviceTypeRepo: serviceTypeRepo}
}

// Create creates a new service type
func (s *ServiceTypeService) Create(ctx context.Context, tenantID, createdBy uuid.UUID, req CreateServiceTypeRequest) (*ServiceTypeResponse, error) {
	exists, err := s.serviceTypeRepo.ExistsByName(ctx, tenantID, req.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("service type %q already exists", req.Name)
	}

	serviceType, err := catalog.NewServiceType(tenantID, req.Name, req.DefaultRate, req.GSTRate)
	if err != nil {
		return nil, err
	}
	if createdBy != uuid.Nil {
		serviceType.SetCreatedBy(createdBy)
	}
	if req.Description != "" || req.SACCode != "" {
		if err := serviceType.Update(req.Name, req.Description, req.SACCode); err != nil {
			return nil, err
		}
	}

	if err := s.serviceTypeRepo.Create(ctx, serviceType); err != nil {
		return nil, err
	}

	response := ToServiceTypeResponse(serviceType)
	return &response, nil
}

// GetByID retrieves a service type by ID
func (s *ServiceTypeService) GetByID(ctx context.Context, tenantID, serviceTypeID uuid.UUID) (*ServiceTypeResponse, error) {
	serviceType, err := s.serviceTypeRepo.FindByIDForTenant(ctx, tenantID, serviceTypeID)
	if err != nil {
		return nil, err
	}

	response := ToServiceTypeResponse(serviceType)
	return &response, nil
}

// List retrieves service types with search and pagination
func (s *ServiceTypeService) List(ctx context.Context, tenantID uuid.UUID, filter ServiceTypeListFilter) ([]ServiceTypeResponse, int64, error) {
	serviceTypes, total, err := s.serviceTypeRepo.List(ctx, tenantID, shared.Filter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}, filter.ActiveOnly)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ServiceTypeResponse, 0, len(serviceTypes))
	for i := range serviceTypes {
		responses = append(responses, ToServiceTypeResponse(&serviceTypes[i]))
	}
	return responses, total, nil
}

// Update updates a service type
func (s *ServiceTypeService) Update(ctx context.Context, tenantID, serviceTypeID uuid.UUID, req UpdateServiceTypeRequest) (*ServiceTypeResponse, error) {
	serviceType, err := s.serviceTypeRepo.FindByIDForTenant(ctx, tenantID, serviceTypeID)
	if err != nil {
		return nil, err
	}

	name := serviceType.Name
	if req.Name != nil {
		exists, err := s.serviceTypeRepo.ExistsByName(ctx, tenantID, *req.Name, &serviceType.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewConflictError("service type %q already exists", *req.Name)
		}
		name = *req.Name
	}
	description := serviceType.Description
	if req.Description != nil {
		description = *req.Description
	}
	sacCode := serviceType.SACCode
	if req.SACCode != nil {
		sacCode = *req.SACCode
	}
	if err := serviceType.Update(name, description, sacCode); err != nil {
		return nil, err
	}

	if req.DefaultRate != nil || req.GSTRate != nil {
		defaultRate := serviceType.DefaultRate
		if req.DefaultRate != nil {
			defaultRate = *req.DefaultRate
		}
		gstRate := serviceType.GSTRate
		if req.GSTRate != nil {
			gstRate = *req.GSTRate
		}
		if err := serviceType.SetRates(defaultRate, gstRate); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			serviceType.Activate()
		} else {
			serviceType.Deactivate()
		}
	}

	if err := s.serviceTypeRepo.Update(ctx, serviceType); err != nil {
		return nil, err
	}

	response := ToServiceTypeResponse(serviceType)
	return &response, nil
}

// Delete removes a service type no invoice line refers to
func (s *ServiceTypeService) Delete(ctx context.Context, tenantID, serviceTypeID uuid.UUID) error {
	serviceType, err := s.serviceTypeRepo.FindByIDForTenant(ctx, tenantID, serviceTypeID)
	if err != nil {
		return err
	}

	references, err := s.serviceTypeRepo.CountLineItemReferences(ctx, serviceType.ID)
	if err != nil {
		return err
	}
	if references > 0 {
		return shared.NewForbiddenError("service type used on invoices cannot be deleted")
	}

	return s.serviceTypeRepo.Delete(ctx, tenantID, serviceType.ID)
}
