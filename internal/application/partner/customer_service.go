package partner

import (
	"context"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	invoiceRepo    billing.InvoiceRepository
	receiptRepo    billing.ReceiptRepository
	creditNoteRepo billing.CreditNoteRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	invoiceRepo billing.InvoiceRepository,
	receiptRepo billing.ReceiptRepository,
	creditNoteRepo billing.CreditNoteRepository,
) *CustomerService {
	return &CustomerService{
		customerRepo:   customerRepo,
		invoiceRepo:    invoiceRepo,
		receiptRepo:    receiptRepo,
		creditNoteRepo: creditNoteRepo,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID, createdBy uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	exists, err := s.customerRepo.ExistsByName(ctx, tenantID, req.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("customer %q already exists", req.Name)
	}

	customer, err := partner.NewCustomer(tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	if createdBy != uuid.Nil {
		customer.SetCreatedBy(createdBy)
	}

	if req.ContactName != "" {
		if err := customer.Update(req.Name, req.ContactName); err != nil {
			return nil, err
		}
	}
	if req.Email != "" || req.Phone != "" {
		if err := customer.SetContact(req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	if req.GSTIN != "" {
		if err := customer.SetGSTIN(req.GSTIN); err != nil {
			return nil, err
		}
	}
	if req.AddressLine1 != "" || req.City != "" || req.State != "" {
		if err := customer.SetAddress(req.AddressLine1, req.AddressLine2, req.City, req.State, req.StateCode, req.PostalCode); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		customer.SetNotes(req.Notes)
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with search and pagination
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	customers, total, err := s.customerRepo.List(ctx, tenantID, shared.Filter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, ToCustomerResponse(&customers[i]))
	}
	return responses, total, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		exists, err := s.customerRepo.ExistsByName(ctx, tenantID, *req.Name, &customer.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewConflictError("customer %q already exists", *req.Name)
		}
		contactName := customer.ContactName
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if err := customer.Update(*req.Name, contactName); err != nil {
			return nil, err
		}
	} else if req.ContactName != nil {
		if err := customer.Update(customer.Name, *req.ContactName); err != nil {
			return nil, err
		}
	}

	if req.Email != nil || req.Phone != nil {
		email := customer.Email
		if req.Email != nil {
			email = *req.Email
		}
		phone := customer.Phone
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := customer.SetContact(email, phone); err != nil {
			return nil, err
		}
	}
	if req.GSTIN != nil {
		if err := customer.SetGSTIN(*req.GSTIN); err != nil {
			return nil, err
		}
	}
	if req.AddressLine1 != nil || req.AddressLine2 != nil || req.City != nil ||
		req.State != nil || req.StateCode != nil || req.PostalCode != nil {
		line1, line2 := customer.AddressLine1, customer.AddressLine2
		city, state := customer.City, customer.State
		stateCode, postalCode := customer.StateCode, customer.PostalCode
		if req.AddressLine1 != nil {
			line1 = *req.AddressLine1
		}
		if req.AddressLine2 != nil {
			line2 = *req.AddressLine2
		}
		if req.City != nil {
			city = *req.City
		}
		if req.State != nil {
			state = *req.State
		}
		if req.StateCode != nil {
			stateCode = *req.StateCode
		}
		if req.PostalCode != nil {
			postalCode = *req.PostalCode
		}
		if err := customer.SetAddress(line1, line2, city, state, stateCode, postalCode); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		customer.SetNotes(*req.Notes)
	}
	if req.Status != nil {
		switch partner.CustomerStatus(*req.Status) {
		case partner.CustomerStatusActive:
			if !customer.IsActive() {
				if err := customer.Activate(); err != nil {
					return nil, err
				}
			}
		case partner.CustomerStatusInactive:
			if customer.IsActive() {
				if err := customer.Deactivate(); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer with no billing documents. A customer
// referenced by any invoice, receipt or credit note cannot be deleted.
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return err
	}

	invoices, err := s.invoiceRepo.CountByCustomer(ctx, tenantID, customer.ID)
	if err != nil {
		return err
	}
	receipts, err := s.receiptRepo.CountByCustomer(ctx, tenantID, customer.ID)
	if err != nil {
		return err
	}
	credits, err := s.creditNoteRepo.CountByCustomer(ctx, tenantID, customer.ID)
	if err != nil {
		return err
	}
	if invoices > 0 || receipts > 0 || credits > 0 {
		return shared.NewForbiddenError("customer with billing documents cannot be deleted")
	}

	return s.customerRepo.Delete(ctx, tenantID, customer.ID)
}
