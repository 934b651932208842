package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReceiptService handles payment recording and allocation
type ReceiptService struct {
	receiptRepo  billing.ReceiptRepository
	customerRepo partner.CustomerRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(receiptRepo billing.ReceiptRepository, customerRepo partner.CustomerRepository) *ReceiptService {
	return &ReceiptService{
		receiptRepo:  receiptRepo,
		customerRepo: customerRepo,
	}
}

// Create records a payment and its allocations atomically. The per-invoice
// outstanding check runs inside the write transaction against locked
// invoice rows; either every allocation commits or none does.
func (s *ReceiptService) Create(ctx context.Context, tenantID, createdBy uuid.UUID, req CreateReceiptRequest) (*ReceiptResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive() {
		return nil, shared.NewValidationError("customer is inactive")
	}

	number := req.ReceiptNumber
	if number == "" {
		number, err = s.nextNumber(ctx, tenantID, req.ReceiptDate.Year())
		if err != nil {
			return nil, err
		}
	} else {
		existing, err := s.receiptRepo.FindByNumber(ctx, tenantID, number)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewConflictError("receipt number %s already exists", number)
		}
	}

	drafts := make([]billing.AllocationDraft, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		drafts = append(drafts, billing.AllocationDraft{InvoiceID: a.InvoiceID, Amount: a.Amount})
	}

	receipt, err := billing.NewReceipt(tenantID, number, req.CustomerID, req.ReceiptDate,
		billing.PaymentMethod(req.PaymentMethod), req.Amount, req.Notes, drafts, time.Now())
	if err != nil {
		return nil, err
	}
	if createdBy != uuid.Nil {
		receipt.SetCreatedBy(createdBy)
	}

	invoiceNumbers, err := s.receiptRepo.CreateWithAllocations(ctx, receipt, func(balances billing.InvoiceBalanceReader) error {
		return billing.ValidateAllocationsAgainstOutstanding(receipt, balances)
	})
	if err != nil {
		return nil, err
	}

	response := ToReceiptResponse(receipt)
	response.InvoicesUpdated = invoiceNumbers
	return &response, nil
}

// GetByID retrieves a receipt with its allocations
func (s *ReceiptService) GetByID(ctx context.Context, tenantID, receiptID uuid.UUID) (*ReceiptResponse, error) {
	receipt, err := s.receiptRepo.FindByIDForTenant(ctx, tenantID, receiptID)
	if err != nil {
		return nil, err
	}

	response := ToReceiptResponse(receipt)
	return &response, nil
}

// List retrieves receipts with pagination
func (s *ReceiptService) List(ctx context.Context, tenantID uuid.UUID, filter ReceiptListFilter) ([]ReceiptResponse, int64, error) {
	domainFilter := billing.ReceiptListFilter{
		Filter: shared.Filter{
			Search:   filter.Search,
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		CustomerID: filter.CustomerID,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
	}
	if filter.PaymentMethod != "" {
		method := billing.PaymentMethod(filter.PaymentMethod)
		if !method.IsValid() {
			return nil, 0, shared.NewValidationError("invalid payment method %q", filter.PaymentMethod)
		}
		domainFilter.PaymentMethod = &method
	}

	receipts, total, err := s.receiptRepo.List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ReceiptResponse, 0, len(receipts))
	for i := range receipts {
		responses = append(responses, ToReceiptResponse(&receipts[i]))
	}
	return responses, total, nil
}

// NextNumber previews the next receipt number for the current year
func (s *ReceiptService) NextNumber(ctx context.Context, tenantID uuid.UUID) (*NextNumberResponse, error) {
	number, err := s.nextNumber(ctx, tenantID, time.Now().Year())
	if err != nil {
		return nil, err
	}
	return &NextNumberResponse{NextNumber: number}, nil
}

func (s *ReceiptService) nextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	highest, err := s.receiptRepo.HighestNumber(ctx, tenantID,
		billing.DocumentNumberPattern(billing.ReceiptNumberPrefix, year))
	if err != nil {
		return "", err
	}
	return billing.NextDocumentNumber(billing.ReceiptNumberPrefix, year, highest), nil
}
