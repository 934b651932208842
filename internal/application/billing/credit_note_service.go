package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNoteService handles credit note issuance and cancellation
type CreditNoteService struct {
	creditNoteRepo billing.CreditNoteRepository
	invoiceRepo    billing.InvoiceRepository
	customerRepo   partner.CustomerRepository
}

// NewCreditNoteService creates a new CreditNoteService
func NewCreditNoteService(
	creditNoteRepo billing.CreditNoteRepository,
	invoiceRepo billing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
) *CreditNoteService {
	return &CreditNoteService{
		creditNoteRepo: creditNoteRepo,
		invoiceRepo:    invoiceRepo,
		customerRepo:   customerRepo,
	}
}

// Create issues a credit note. When tied to an invoice, the credit cap
// check runs inside the write transaction against the locked invoice row.
func (s *CreditNoteService) Create(ctx context.Context, tenantID, createdBy uuid.UUID, req CreateCreditNoteRequest) (*CreditNoteResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive() {
		return nil, shared.NewValidationError("customer is inactive")
	}

	if req.InvoiceID != nil {
		invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, *req.InvoiceID)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, shared.NewValidationError("invalid invoice reference")
			}
			return nil, err
		}
		if invoice.CustomerID != req.CustomerID {
			return nil, shared.NewValidationError("invoice belongs to a different customer")
		}
	}

	number := req.CreditNoteNumber
	if number == "" {
		number, err = s.nextNumber(ctx, tenantID, req.CreditNoteDate.Year())
		if err != nil {
			return nil, err
		}
	} else {
		existing, err := s.creditNoteRepo.FindByNumber(ctx, tenantID, number)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewConflictError("credit note number %s already exists", number)
		}
	}

	note, err := billing.NewCreditNote(tenantID, number, req.CustomerID, req.CreditNoteDate,
		req.InvoiceID, req.Reason, req.Amount, req.GSTRate, req.Notes)
	if err != nil {
		return nil, err
	}
	if createdBy != uuid.Nil {
		note.SetCreatedBy(createdBy)
	}

	err = s.creditNoteRepo.Create(ctx, note, func(invoiceTotal, existingCredits decimal.Decimal) error {
		return billing.ValidateCreditAgainstInvoice(note, invoiceTotal, existingCredits)
	})
	if err != nil {
		return nil, err
	}

	response := ToCreditNoteResponse(note)
	return &response, nil
}

// GetByID retrieves a credit note
func (s *CreditNoteService) GetByID(ctx context.Context, tenantID, creditNoteID uuid.UUID) (*CreditNoteResponse, error) {
	note, err := s.creditNoteRepo.FindByIDForTenant(ctx, tenantID, creditNoteID)
	if err != nil {
		return nil, err
	}

	response := ToCreditNoteResponse(note)
	return &response, nil
}

// List retrieves credit notes with pagination
func (s *CreditNoteService) List(ctx context.Context, tenantID uuid.UUID, filter CreditNoteListFilter) ([]CreditNoteResponse, int64, error) {
	domainFilter := billing.CreditNoteListFilter{
		Filter: shared.Filter{
			Search:   filter.Search,
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		CustomerID: filter.CustomerID,
		InvoiceID:  filter.InvoiceID,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
	}

	notes, total, err := s.creditNoteRepo.List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CreditNoteResponse, 0, len(notes))
	for i := range notes {
		responses = append(responses, ToCreditNoteResponse(&notes[i]))
	}
	return responses, total, nil
}

// Cancel marks a credit note cancelled, releasing its share of the
// invoice's credit cap
func (s *CreditNoteService) Cancel(ctx context.Context, tenantID, creditNoteID uuid.UUID) (*CreditNoteResponse, error) {
	note, err := s.creditNoteRepo.FindByIDForTenant(ctx, tenantID, creditNoteID)
	if err != nil {
		return nil, err
	}

	if err := note.Cancel(); err != nil {
		return nil, err
	}
	if err := s.creditNoteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	response := ToCreditNoteResponse(note)
	return &response, nil
}

// NextNumber previews the next credit note number for the current year
func (s *CreditNoteService) NextNumber(ctx context.Context, tenantID uuid.UUID) (*NextNumberResponse, error) {
	number, err := s.nextNumber(ctx, tenantID, time.Now().Year())
	if err != nil {
		return nil, err
	}
	return &NextNumberResponse{NextNumber: number}, nil
}

func (s *CreditNoteService) nextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	highest, err := s.creditNoteRepo.HighestNumber(ctx, tenantID,
		billing.DocumentNumberPattern(billing.CreditNoteNumberPrefix, year))
	if err != nil {
		return "", err
	}
	return billing.NextDocumentNumber(billing.CreditNoteNumberPrefix, year, highest), nil
}
